package vfs

import (
	"fmt"
	"strings"
)

// Root is the top of every user's namespace.
const Root = "/"

// NormalizePath validates a parent-directory path and returns it in canonical
// form: starting and ending with "/", with every segment a valid name.
// "" and "/" both normalize to the root.
func NormalizePath(p string) (string, error) {
	if p == "" || p == Root {
		return Root, nil
	}
	if !strings.HasPrefix(p, "/") {
		return "", &ValidationError{Reason: fmt.Sprintf("path %q must start with /", p)}
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if err := ValidateName(seg); err != nil {
			return "", &ValidationError{Reason: fmt.Sprintf("path %q: %v", p, err)}
		}
	}
	return p, nil
}

// ValidateName checks a single leaf segment: 1-255 characters after trimming,
// no slashes, and not a dot name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Reason: "name is required"}
	}
	if len(trimmed) > 255 {
		return &ValidationError{Reason: "name exceeds 255 characters"}
	}
	if strings.Contains(trimmed, "/") {
		return &ValidationError{Reason: fmt.Sprintf("name %q must not contain /", name)}
	}
	if trimmed == "." || trimmed == ".." {
		return &ValidationError{Reason: fmt.Sprintf("name %q is reserved", name)}
	}
	return nil
}

// ChildPath returns the path addressing the contents of a folder.
func ChildPath(parent, name string) string {
	return parent + name + "/"
}

// FileKey builds the object-store key for a file entry.
func FileKey(ownerID, path, name string) string {
	return ownerID + path + name
}

// FolderKey builds the object-store key for a folder entry. The trailing
// slash makes the key a strict prefix of every descendant's key.
func FolderKey(ownerID, path, name string) string {
	return ownerID + path + name + "/"
}

// SplitRelative breaks a client-supplied relative path ("subdir/photo.png")
// into its directory segments and the trailing filename. Empty segments from
// doubled or leading slashes are dropped, matching browser folder uploads.
func SplitRelative(rel string) (dirs []string, filename string, err error) {
	var segs []string
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" {
			continue
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return nil, "", &ValidationError{Reason: fmt.Sprintf("relative path %q has no filename", rel)}
	}
	filename = segs[len(segs)-1]
	dirs = segs[:len(segs)-1]
	for _, d := range dirs {
		if err := ValidateName(d); err != nil {
			return nil, "", err
		}
	}
	if err := ValidateName(filename); err != nil {
		return nil, "", err
	}
	return dirs, filename, nil
}
