// Package redact masks secrets in log output. Secrets are either known token
// formats matched by pattern, or literal values collected from the
// configuration under secret-looking keys.
package redact

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Placeholder replaces every redacted secret.
const Placeholder = "***REDACTED***"

// secretKey matches configuration keys whose values are secrets.
var secretKey = regexp.MustCompile(`(?i)(secret|token|password|pass$|api_key|credential|authorization)`)

// minLiteral is the shortest literal worth masking; shorter values would
// mangle unrelated text.
const minLiteral = 4

// Redactor replaces secrets in strings. Safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// New returns a Redactor with the default token patterns and the given
// literal secrets.
func New(literals ...string) *Redactor {
	r := &Redactor{patterns: DefaultPatterns()}
	for _, l := range literals {
		r.AddLiteral(l)
	}
	return r
}

// AddLiteral registers a secret value. Values shorter than four bytes and
// duplicates are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if len(secret) < minLiteral {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.literals, secret) {
		r.literals = append(r.literals, secret)
	}
}

// Redact returns s with every known secret replaced by Placeholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns, literals := r.patterns, r.literals
	r.mu.RUnlock()

	for _, p := range patterns {
		s = p.ReplaceAllString(s, Placeholder)
	}
	for _, lit := range literals {
		s = strings.ReplaceAll(s, lit, Placeholder)
	}
	return s
}

// DefaultPatterns returns the token formats masked without configuration.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Authorization header values.
		regexp.MustCompile(`(?i)\b(bearer|basic)\s+[a-z0-9._~+/=\-]{8,}`),
		// GitHub: ghp_, gho_, ghs_, github_pat_
		regexp.MustCompile(`(ghp_|gho_|ghs_|github_pat_)[a-zA-Z0-9_]{20,}`),
		// AWS access key ID
		regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
		// Slack bot and user tokens
		regexp.MustCompile(`xox[bp]-[0-9]+-[a-zA-Z0-9]+`),
	}
}

// Collect walks a YAML tree and returns the scalar values stored under
// secret-looking mapping keys, such as gateway.auth.bearer_token or a
// command job's env.API_TOKEN.
func Collect(node *yaml.Node) []string {
	var out []string
	collect(node, &out)
	return out
}

func collect(n *yaml.Node, out *[]string) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			collect(c, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if val.Kind == yaml.ScalarNode && secretKey.MatchString(key.Value) && val.Value != "" {
				*out = append(*out, val.Value)
				continue
			}
			collect(val, out)
		}
	case yaml.AliasNode:
		collect(n.Alias, out)
	}
}
