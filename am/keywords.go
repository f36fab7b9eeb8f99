package am

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/wbwatch/errors"
)

// KeywordFile is the YAML document referenced by keywords.file. Either a bare
// list of terms or a mapping with keywords and contractor_terms is accepted.
type KeywordFile struct {
	Keywords        []string `yaml:"keywords"`
	ContractorTerms []string `yaml:"contractor_terms"`
}

// LoadKeywordFile reads a keyword file
func LoadKeywordFile(path string) (*KeywordFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keyword file %s", path)
	}

	var kw KeywordFile
	if err := yaml.Unmarshal(data, &kw); err != nil {
		var terms []string
		if listErr := yaml.Unmarshal(data, &terms); listErr != nil {
			return nil, errors.Wrapf(err, "failed to parse keyword file %s", path)
		}
		kw.Keywords = terms
	}

	kw.Keywords = compactTerms(kw.Keywords)
	kw.ContractorTerms = compactTerms(kw.ContractorTerms)
	if len(kw.Keywords) == 0 {
		return nil, errors.WithHint(
			errors.Newf("keyword file %s contains no keywords", path),
			"list terms under a top-level 'keywords:' key or as a bare YAML list",
		)
	}
	return &kw, nil
}

// compactTerms drops blank entries and exact duplicates, keeping first-seen order.
func compactTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0:0]
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
