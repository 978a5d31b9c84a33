// Package selector resolves which organizations a run covers from user input.
package selector

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/martinsuchenak/merakilife/internal/model"
)

var (
	ErrEmptySelection  = errors.New("no organizations selected")
	ErrNoOrganizations = errors.New("no organizations available")
)

// Parse resolves input against orgs. Input is "all" or a comma separated
// list of 1-based indices, organization IDs or names (case-insensitive).
// Repeats are dropped, keeping the first occurrence.
func Parse(input string, orgs []model.Organization) ([]model.Organization, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptySelection
	}
	if len(orgs) == 0 {
		return nil, ErrNoOrganizations
	}
	if strings.EqualFold(input, "all") {
		return orgs, nil
	}

	seen := make(map[string]struct{})
	var selected []model.Organization

	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		org, err := resolve(token, orgs)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[org.ID]; dup {
			continue
		}
		seen[org.ID] = struct{}{}
		selected = append(selected, org)
	}

	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	return selected, nil
}

// resolve matches an index first, then an ID, then a name
func resolve(token string, orgs []model.Organization) (model.Organization, error) {
	if n, err := strconv.Atoi(token); err == nil {
		if n >= 1 && n <= len(orgs) {
			return orgs[n-1], nil
		}
		for _, o := range orgs {
			if o.ID == token {
				return o, nil
			}
		}
		return model.Organization{}, fmt.Errorf("selection %d out of range 1-%d", n, len(orgs))
	}

	for _, o := range orgs {
		if o.ID == token {
			return o, nil
		}
	}
	for _, o := range orgs {
		if strings.EqualFold(o.Name, token) {
			return o, nil
		}
	}
	return model.Organization{}, fmt.Errorf("unknown organization %q", token)
}

// Prompt lists orgs on out and reads one selection line from in
func Prompt(in io.Reader, out io.Writer, orgs []model.Organization) ([]model.Organization, error) {
	if len(orgs) == 0 {
		return nil, ErrNoOrganizations
	}

	fmt.Fprintln(out, "Available organizations:")
	for i, o := range orgs {
		fmt.Fprintf(out, "%d - %s\n", i+1, o.Name)
	}
	fmt.Fprint(out, "Select organizations (comma separated numbers, or 'all'): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("reading selection: %w", err)
	}
	return Parse(line, orgs)
}
