package catalog

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/ini.v1"
)

const defaultProfile = "default"

// Profiles lists the AWS named profiles configured in the shared
// credentials file. "default" is always offered, whether or not a
// credentials file exists.
func Profiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{defaultProfile}
	}
	return ProfilesFromFile(filepath.Join(home, ".aws", "credentials"))
}

// ProfilesFromFile reads profile names out of the given shared
// credentials file. An unreadable or malformed file yields just the
// default profile.
func ProfilesFromFile(path string) []string {
	names := map[string]struct{}{defaultProfile: {}}

	cfg, err := ini.Load(path)
	if err == nil {
		for _, section := range cfg.Sections() {
			if section.Name() == ini.DefaultSection {
				continue
			}
			names[section.Name()] = struct{}{}
		}
	}

	profiles := make([]string, 0, len(names))
	for name := range names {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}
