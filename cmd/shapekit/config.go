package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	sk "github.com/reoring/shapekit"
)

// fileConfig is the YAML configuration accepted by -config.
//
//	non_strict_primitives: true
//	sum_type_dict: true
//	tag_key: $type
//	overrides:
//	  Person:
//	    first_name: first-name
type fileConfig struct {
	NonStrictPrimitives bool                         `yaml:"non_strict_primitives,omitempty"`
	SumTypeDict         bool                         `yaml:"sum_type_dict,omitempty"`
	TagKey              string                       `yaml:"tag_key,omitempty"`
	Overrides           map[string]map[string]string `yaml:"overrides,omitempty"`
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (*fileConfig, error) {
	fc := &fileConfig{}
	if err := yaml.Unmarshal(b, fc); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return fc, nil
}

// records indexes the records reachable from root by name.
func records(root sk.Desc) map[string]*sk.Record {
	out := map[string]*sk.Record{}
	sk.Walk(root, func(d sk.Desc) bool {
		if r, ok := d.(*sk.Record); ok {
			out[r.Name()] = r
		}
		return true
	})
	return out
}

// config turns the file into a shapekit configuration for root. Record names
// that do not occur under root are an error.
func (fc *fileConfig) config(root sk.Desc) (*sk.Config, error) {
	var opts []sk.Option
	if fc.NonStrictPrimitives {
		opts = append(opts, sk.NonStrictPrimitives())
	}
	if fc.SumTypeDict || fc.TagKey != "" {
		opts = append(opts, sk.SumTypeDict(fc.TagKey))
	}
	recs := records(root)
	for name, fields := range fc.Overrides {
		rec, ok := recs[name]
		if !ok {
			return nil, fmt.Errorf("config: unknown record %q", name)
		}
		opts = append(opts, sk.Overrides(rec, fields))
	}
	return sk.New(opts...), nil
}

// configFor renders the overrides of cfg for the records under root, so
// the output of infer can be edited and passed back with -config.
func configFor(root sk.Desc, cfg *sk.Config) *fileConfig {
	fc := &fileConfig{NonStrictPrimitives: cfg.NonStrict()}
	if key, ok := cfg.TagKey(); ok {
		fc.SumTypeDict, fc.TagKey = true, key
	}
	recs := records(root)
	names := make([]string, 0, len(recs))
	for n := range recs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		rec := recs[n]
		for _, f := range rec.Fields() {
			ext, ok := cfg.OverrideFor(rec, f.Name)
			if !ok {
				continue
			}
			if fc.Overrides == nil {
				fc.Overrides = map[string]map[string]string{}
			}
			if fc.Overrides[n] == nil {
				fc.Overrides[n] = map[string]string{}
			}
			fc.Overrides[n][f.Name] = ext
		}
	}
	return fc
}
