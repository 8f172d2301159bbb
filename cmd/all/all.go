// Package all registers all subcommands.
package all

import (
	_ "github.com/miraveja/miraveja/cmd/acquire"
	_ "github.com/miraveja/miraveja/cmd/extract"
	_ "github.com/miraveja/miraveja/cmd/serve"
	_ "github.com/miraveja/miraveja/cmd/sniff"
)
