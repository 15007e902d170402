package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/k8s-schemas/crdcat/cmd/crdcat/commands"
)

const (
	cmdName = "crdcat"

	shortDesc = "The CRD schema catalog CLI."
	longDesc  = `The crdcat (CRD catalog) Command Line Interface (CLI).

crdcat maintains a catalog of JSON schemas extracted from Kubernetes Custom
Resource Definitions. Sources declare where CRDs live (Helm charts, GitHub
repositories and releases, or plain URLs); crdcat pulls the manifests,
converts every CRD version into a strict JSON schema with provenance, and
resolves duplicate documents across sources.

The schemas are suitable for tools like kubeconform and yaml-language-server.
`
)

func main() {
	cmd := commands.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
