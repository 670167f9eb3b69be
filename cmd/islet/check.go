package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm/islet"
)

// partialDir is the directory the generator writes partial fragments to,
// relative to the site root.
const partialDir = "html"

// runCheck walks a generated site and reports contract violations. It
// returns the number of issues found.
func runCheck(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: islet check <site-dir>")
	}
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", root)
	}

	issues := 0
	report := func(path, msg string) {
		fmt.Printf("%s: %s\n", path, msg)
		issues++
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, partialDir+"/") {
			return nil
		}

		checkIslands(path, report)

		partial := filepath.Join(root, partialDir, rel)
		if _, err := os.Stat(partial); err != nil {
			report(rel, fmt.Sprintf("no partial at %s/%s", partialDir, rel))
		}
		return nil
	})
	return issues, err
}

// checkIslands validates every island in one page against the markup
// contract.
func checkIslands(path string, report func(path, msg string)) {
	f, err := os.Open(path)
	if err != nil {
		report(path, err.Error())
		return
	}
	defer f.Close()

	base := &url.URL{Scheme: "file", Path: "/"}
	doc, err := islet.ParseDocument(f, base)
	if err != nil {
		report(path, fmt.Sprintf("unparsable: %v", err))
		return
	}

	for i, island := range doc.QuerySelectorAll(islet.IslandSelector) {
		where := fmt.Sprintf("island #%d", i+1)

		name, _ := island.Attr("data-component")
		if name == "" {
			report(path, where+": missing data-component")
		}
		if raw, ok := island.Attr("data-props"); ok && raw != "" {
			var props map[string]any
			if err := json.Unmarshal([]byte(raw), &props); err != nil {
				report(path, fmt.Sprintf("%s (%s): data-props is not a JSON object: %v", where, name, err))
			}
		}
		if strategy, ok := island.Attr("data-loading"); ok {
			if strategy != islet.LoadingEager && strategy != "lazy" {
				report(path, fmt.Sprintf("%s (%s): unknown data-loading %q", where, name, strategy))
			}
		}
	}
}
