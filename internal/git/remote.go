package git

import (
	"net/url"
	"strings"
)

// ParseRemote extracts "owner/repo" from an https, ssh or scp-style remote URL.
func ParseRemote(remote string) (string, bool) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", false
	}

	var path string
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return "", false
		}
		path = u.Path
	} else if _, rest, ok := strings.Cut(remote, ":"); ok && strings.Contains(remote, "@") {
		path = rest
	} else {
		return "", false
	}

	path = strings.Trim(strings.TrimSuffix(strings.Trim(path, "/"), ".git"), "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", false
	}
	owner, name := parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", false
	}
	return owner + "/" + name, true
}
