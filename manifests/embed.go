// Package manifests embeds the CustomResourceDefinitions the operator
// installs when started with --install-crds. Keeping the manifests in
// a top-level directory makes them easy to inspect and apply with
// kubectl as well.
package manifests

import "embed"

// CRDs holds one CustomResourceDefinition per file under "crds/".
//
//go:embed crds/*.yaml
var CRDs embed.FS
