// Package directory is an in-memory source of mention suggestions, searched
// by the keyword typed after a trigger.
package directory

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/tchap/go-patricia/v2/patricia"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mentions/internal/log"
	"github.com/zjrosen/mentions/internal/mention"
)

// Directory indexes suggestions by lower-cased id, name and name words.
// It is immutable after construction and safe for concurrent reads.
type Directory struct {
	entries []mention.Suggestion
	byID    map[string]int
	names   []string
	trie    *patricia.Trie
}

// New builds a directory. Later entries with a duplicate id are dropped.
func New(suggestions []mention.Suggestion) *Directory {
	d := &Directory{
		byID: make(map[string]int, len(suggestions)),
		trie: patricia.NewTrie(),
	}
	for _, s := range suggestions {
		if s.ID == "" {
			log.Warn(log.CatDirectory, "skipping suggestion without id", "name", s.Name)
			continue
		}
		if _, dup := d.byID[s.ID]; dup {
			log.Warn(log.CatDirectory, "skipping duplicate suggestion id", "id", s.ID)
			continue
		}
		idx := len(d.entries)
		d.entries = append(d.entries, s)
		d.byID[s.ID] = idx
		d.names = append(d.names, displayName(s))

		for _, key := range indexKeys(s) {
			d.index(key, idx)
		}
	}
	return d
}

type file struct {
	Suggestions []mention.Suggestion `yaml:"suggestions"`
}

// Load reads a YAML file with a top-level "suggestions" list.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing directory %s: %w", path, err)
	}
	d := New(f.Suggestions)
	log.Info(log.CatDirectory, "loaded directory", "path", path, "entries", d.Len())
	return d, nil
}

// Len returns the number of suggestions.
func (d *Directory) Len() int { return len(d.entries) }

// All returns every suggestion in load order.
func (d *Directory) All() []mention.Suggestion { return slices.Clone(d.entries) }

// Lookup finds a suggestion by id.
func (d *Directory) Lookup(id string) (mention.Suggestion, bool) {
	idx, ok := d.byID[id]
	if !ok {
		return mention.Suggestion{}, false
	}
	return d.entries[idx], true
}

// Search returns up to limit suggestions for keyword; limit <= 0 means no
// limit. Prefix matches on id, name or any name word come first, sorted by
// name, followed by fuzzy matches on the name in score order. An empty
// keyword lists the directory in load order.
func (d *Directory) Search(keyword string, limit int) []mention.Suggestion {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return d.take(seq(len(d.entries)), limit)
	}

	seen := make(map[int]bool)
	var prefix []int
	err := d.trie.VisitSubtree(patricia.Prefix(keyword), func(_ patricia.Prefix, item patricia.Item) error {
		for _, idx := range item.([]int) {
			if !seen[idx] {
				seen[idx] = true
				prefix = append(prefix, idx)
			}
		}
		return nil
	})
	if err != nil {
		log.ErrorErr(log.CatDirectory, "prefix search failed", err, "keyword", keyword)
	}
	slices.SortFunc(prefix, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(d.names[a]), strings.ToLower(d.names[b])),
			cmp.Compare(a, b),
		)
	})

	hits := prefix
	for _, m := range fuzzy.Find(keyword, d.names) {
		if !seen[m.Index] {
			seen[m.Index] = true
			hits = append(hits, m.Index)
		}
	}

	log.Debug(log.CatDirectory, "search", "keyword", keyword, "prefix", len(prefix), "total", len(hits))

	return d.take(hits, limit)
}

func (d *Directory) take(idxs []int, limit int) []mention.Suggestion {
	if limit > 0 && len(idxs) > limit {
		idxs = idxs[:limit]
	}
	out := make([]mention.Suggestion, len(idxs))
	for i, idx := range idxs {
		out[i] = d.entries[idx]
	}
	return out
}

func (d *Directory) index(key string, idx int) {
	p := patricia.Prefix(key)
	if item := d.trie.Get(p); item != nil {
		idxs := item.([]int)
		if !slices.Contains(idxs, idx) {
			d.trie.Set(p, append(idxs, idx))
		}
		return
	}
	d.trie.Insert(p, []int{idx})
}

func indexKeys(s mention.Suggestion) []string {
	keys := []string{strings.ToLower(s.ID)}
	if name := strings.ToLower(strings.TrimSpace(s.Name)); name != "" {
		keys = append(keys, name)
		keys = append(keys, strings.Fields(name)...)
	}
	return keys
}

func displayName(s mention.Suggestion) string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
