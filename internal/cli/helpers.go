package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/productimporter/catalogctl/internal/jobs"
	"github.com/thoas/go-funk"
)

const (
	ProductKind = "product"
	WebhookKind = "webhook"

	// JobsResource lists the local job history.
	JobsResource = "jobs"
)

var (
	pluralKinds = map[string]string{
		ProductKind: "products",
		WebhookKind: "webhooks",
	}
)

// parseAndValidateKindId splits "product/12" into its kind and id. The id
// is nil when arg names the whole collection, which must be spelled in the
// plural ("products") so a missing id never widens an operation.
func parseAndValidateKindId(arg string) (string, *int, error) {
	name, idStr, hasID := strings.Cut(arg, "/")
	kind := singular(name)
	if _, ok := pluralKinds[kind]; !ok {
		return "", nil, fmt.Errorf("invalid resource kind: %s", name)
	}
	if !hasID {
		if name != plural(kind) {
			return "", nil, fmt.Errorf("%s needs an id (%s/ID), use %s for the whole collection", kind, kind, plural(kind))
		}
		return kind, nil, nil
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		return "", nil, fmt.Errorf("invalid %s id: %q", kind, idStr)
	}
	return kind, &id, nil
}

func singular(kind string) string {
	for singular, plural := range pluralKinds {
		if kind == plural {
			return singular
		}
	}
	return kind
}

func plural(kind string) string {
	return pluralKinds[kind]
}

func jobKinds() []string {
	return []string{string(jobs.KindImport), string(jobs.KindBulkDelete)}
}

func validJobKind(kind string) bool {
	return funk.ContainsString(jobKinds(), kind)
}

// confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// parseActive turns the --active flag into a filter value. An empty flag
// does not filter.
func parseActive(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("--active must be true or false, got %q", s)
	}
	return &b, nil
}
