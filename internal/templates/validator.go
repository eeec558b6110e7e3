package templates

import (
	"errors"
	"regexp"
	"sort"

	oerrors "github.com/karmakrafts/modship/internal/errors"
)

// placeholderPattern matches ${name}. Anything between the braces is
// captured so malformed names are reported rather than left in the output.
var placeholderPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// identifierPattern is the accepted form of a variable name.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Placeholders returns the distinct placeholder names referenced by content,
// sorted.
func Placeholders(content []byte) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllSubmatch(content, -1) {
		seen[string(m[1])] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateTemplate reports every placeholder of content that is not part of
// the closed variable set or has no value in vars. The returned error joins
// one *errors.MissingVariableError per offending name.
func ValidateTemplate(file string, content []byte, vars Variables) error {
	var errs []error
	for _, name := range Placeholders(content) {
		if !identifierPattern.MatchString(name) {
			errs = append(errs, &oerrors.MissingVariableError{File: file, Variable: name})
			continue
		}
		if _, ok := vars.Lookup(name); !ok {
			errs = append(errs, &oerrors.MissingVariableError{File: file, Variable: name})
		}
	}
	return errors.Join(errs...)
}

// Expand substitutes every placeholder of content. It either returns the
// fully substituted content or an error; never a partial result.
func Expand(file string, content []byte, vars Variables) ([]byte, error) {
	if err := ValidateTemplate(file, content, vars); err != nil {
		return nil, err
	}

	return placeholderPattern.ReplaceAllFunc(content, func(m []byte) []byte {
		name := string(m[2 : len(m)-1])
		val, _ := vars.Lookup(name)
		return []byte(val)
	}), nil
}
