package am

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/teranos/wbwatch/errors"
)

// UnknownKeys decodes a config file against Config and returns the keys no
// field consumed, usually typos such as "streams.projects.enable". Viper
// silently ignores them.
func UnknownKeys(path string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys, nil
}
