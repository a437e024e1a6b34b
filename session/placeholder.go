package session

import (
	"encoding/base64"
	"fmt"
)

const (
	PlaceholderSize  = 200
	PlaceholderColor = "#d3d3d3"
)

var placeholderURI = func() string {
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%[1]d" height="%[1]d"><rect width="%[1]d" height="%[1]d" fill="%[2]s"/></svg>`,
		PlaceholderSize, PlaceholderColor)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}()

// Placeholder returns the data URI of the light-gray square shown in place of
// a missing or broken thumbnail.
func Placeholder() string {
	return placeholderURI
}
