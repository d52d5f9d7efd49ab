package zdict

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// BuildOptions tunes dictionary generation. Zero fields take the defaults.
type BuildOptions struct {
	MinSubstringLen int // default 3
	MinRepeats      int // default 7; rarer substrings never make it into the output
	WindowSize      int // default 400 substrings per sliding-window pass
	TargetSize      int // default 0x8000
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.MinSubstringLen <= 0 {
		o.MinSubstringLen = 3
	}
	if o.MinRepeats <= 0 {
		o.MinRepeats = 7
	}
	if o.WindowSize <= 0 {
		o.WindowSize = 400
	}
	if o.TargetSize <= 0 {
		o.TargetSize = 0x8000
	}
	return o
}

// ReadPartNames reads one object path per line, skipping blanks and # comments.
func ReadPartNames(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading part names: %w", err)
	}
	return names, nil
}

// Build generates dictionary bytes from a list of part path names.
//
// Part names are upper-cased (encoders upper-case every path), every substring is
// counted, redundant substrings are folded into longer ones with a similar count,
// and the survivors are packed so that the most common ones end up closest to the
// end of the dictionary, where deflate distances are cheapest.
func Build(partNames []string, opts BuildOptions) []byte {
	opts = opts.withDefaults()

	counts := countSubstrings(partNames, opts.MinSubstringLen, opts.MinRepeats)

	groups := make(map[int][]string)
	for s, n := range counts {
		groups[n] = append(groups[n], s)
	}

	// Одинаковый count: короткая строка внутри длинной ничего не добавляет.
	for n, group := range groups {
		groups[n] = dropContained(byLengthDesc(group))
	}

	order := slices.Sorted(maps.Keys(groups))
	slices.Reverse(order)
	for i, n := range order {
		window := slices.Clone(groups[n])
		for j := i + 1; len(window) < opts.WindowSize && j < len(order); j++ {
			window = append(window, groups[order[j]]...)
		}
		kept := make(map[string]bool)
		for _, s := range dropContained(byLengthDesc(dedupe(window))) {
			kept[s] = true
		}
		groups[n] = slices.DeleteFunc(groups[n], func(s string) bool { return !kept[s] })
	}

	type entry struct {
		s string
		n int
	}
	var entries []entry
	for n, group := range groups {
		for _, s := range group {
			entries = append(entries, entry{s: s, n: n})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.n, a.n); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a.s), len(b.s)); c != 0 {
			return c
		}
		return strings.Compare(a.s, b.s)
	})

	var dict string
	for _, e := range entries {
		dict = prependOverlapping(dict, e.s)
		if len(dict) > opts.TargetSize {
			break
		}
	}

	out := []byte(dict)
	if len(out) > MaxSize {
		out = out[len(out)-MaxSize:]
	}
	return out
}

func countSubstrings(names []string, minLen, minRepeats int) map[string]int {
	counts := make(map[string]int)
	for _, name := range names {
		name = strings.ToUpper(name)
		for start := range len(name) {
			for end := start + minLen; end <= len(name); end++ {
				counts[name[start:end]]++
			}
		}
	}
	for s, n := range counts {
		if n < minRepeats {
			delete(counts, s)
		}
	}
	return counts
}

// prependOverlapping puts s in front of dict, dropping the longest suffix of s that
// dict already starts with.
func prependOverlapping(dict, s string) string {
	for n := len(s) - 1; n > 0; n-- {
		if strings.HasPrefix(dict, s[len(s)-n:]) {
			s = s[:len(s)-n]
			break
		}
	}
	return s + dict
}

// dropContained keeps strings not contained in an earlier kept one. Input must be sorted longest first.
func dropContained(sorted []string) []string {
	kept := make([]string, 0, len(sorted))
	for _, s := range sorted {
		if slices.ContainsFunc(kept, func(k string) bool { return strings.Contains(k, s) }) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func byLengthDesc(in []string) []string {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
