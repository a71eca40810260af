package skills

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// splitFrontmatter separates a leading "---" delimited YAML block from the body.
// Content without a frontmatter block is returned unchanged with an empty header.
func splitFrontmatter(content string) (header, body string, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelim+"\n") {
		return "", normalized, nil
	}

	rest := normalized[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end == -1 {
		if strings.HasPrefix(rest, frontmatterDelim) {
			end = 0
		} else {
			return "", "", fmt.Errorf("unterminated frontmatter block")
		}
	}

	header = rest[:end]
	body = rest[end:]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, frontmatterDelim)
	body = strings.TrimLeft(body, "\n")
	return header, body, nil
}

// parseFrontmatter decodes the YAML header of a skill document.
func parseFrontmatter(content string) (Frontmatter, string, error) {
	header, body, err := splitFrontmatter(content)
	if err != nil {
		return Frontmatter{}, "", err
	}
	var fm Frontmatter
	if strings.TrimSpace(header) == "" {
		return fm, body, nil
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return Frontmatter{}, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	return fm, body, nil
}
