package services

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in a prefix so that entry names
// containing % or _ only match themselves.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
