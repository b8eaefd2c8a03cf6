// Package profile reads and writes modman.profile, the persistent,
// human-readable record of which mods are active and what file contents
// they installed or displaced.
package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mrkline/modman/pkg/digest"
	"github.com/mrkline/modman/pkg/errors"
	"github.com/mrkline/modman/pkg/logging"
)

var log = logging.GetLogger("profile")

// FileName is the profile document's name, always resolved relative to the
// current working directory where the tool is invoked.
const FileName = "modman.profile"

// FileRecord maps one mod root-relative path to the digests modman
// recorded for it at activation (or last update) time.
type FileRecord struct {
	ModHash      string `toml:"mod_hash"`
	OriginalHash string `toml:"original_hash,omitempty"`
}

// HasOriginal reports whether this record displaced a pre-existing file.
func (r FileRecord) HasOriginal() bool {
	return r.OriginalHash != ""
}

// ModManifest records everything modman needs to know about one active mod.
type ModManifest struct {
	Version     string                `toml:"version"`
	Readme      string                `toml:"readme"`
	ActivatedAt string                `toml:"activated_at,omitempty"`
	Files       map[string]FileRecord `toml:"files"`
}

// Profile is the top-level persisted document.
type Profile struct {
	RootDirectory string                 `toml:"root_directory"`
	Mods          map[string]ModManifest `toml:"mods"`
}

// New creates an empty profile rooted at root.
func New(root string) *Profile {
	return &Profile{
		RootDirectory: root,
		Mods:          make(map[string]ModManifest),
	}
}

// SortedModIDs returns the active mod source identifiers in stable,
// deterministic order.
func (p *Profile) SortedModIDs() []string {
	ids := make([]string, 0, len(p.Mods))
	for id := range p.Mods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindPath returns the mod ID and record that claims path P, if any.
func (p *Profile) FindPath(pathP string) (modID string, record FileRecord, found bool) {
	for id, manifest := range p.Mods {
		if rec, ok := manifest.Files[pathP]; ok {
			return id, rec, true
		}
	}
	return "", FileRecord{}, false
}

// Path returns the profile's on-disk location: FileName under cwd.
func Path(cwd string) string {
	return filepath.Join(cwd, FileName)
}

// Exists reports whether a profile document is present at cwd.
func Exists(cwd string) bool {
	_, err := os.Stat(Path(cwd))
	return err == nil
}

// Load reads and parses the profile document at cwd.
func Load(cwd string) (*Profile, error) {
	p := Path(cwd)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrProfileMissing, "no modman.profile found")
		}
		return nil, errors.Wrap(err, errors.ErrIO, "couldn't read modman.profile")
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var prof Profile
	if err := dec.Decode(&prof); err != nil {
		return nil, errors.Wrap(err, errors.ErrProfileParse, "couldn't parse modman.profile")
	}
	if prof.Mods == nil {
		prof.Mods = make(map[string]ModManifest)
	}

	log.Debug().Str("root", prof.RootDirectory).Int("mods", len(prof.Mods)).Msg("profile loaded")
	return &prof, nil
}

// Save persists the profile atomically: write to a temp file in the same
// directory, then rename over the destination.
func Save(cwd string, p *Profile) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "couldn't encode modman.profile")
	}

	dest := Path(cwd)
	tmp := dest + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't write %s", tmp)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "couldn't rename %s to %s", tmp, dest)
	}

	log.Debug().Str("path", dest).Msg("profile saved")
	return nil
}

// DigestOf parses a stored hex digest, returning the zero digest for an
// absent (empty) original_hash.
func DigestOf(hex string) (digest.Digest, error) {
	if hex == "" {
		return digest.Digest{}, nil
	}
	return digest.Parse(hex)
}
