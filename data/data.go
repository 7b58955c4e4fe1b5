// Package data bundles the default project catalog into the binary.
package data

import _ "embed"

// ProjectsFile is the name the bundled catalog is reported under.
const ProjectsFile = "projects.json"

// Projects is the bundled catalog document.
//
//go:embed projects.json
var Projects []byte
