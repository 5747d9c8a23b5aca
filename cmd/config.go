package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/illarion/clipseal/internal/config"
)

// ConfigInit writes the default settings file. An existing file is only
// replaced when force is set.
func ConfigInit(_ context.Context, force bool) {
	path, err := config.DefaultPath()
	if err != nil {
		Fail(err)
	}

	write := config.Create
	if force {
		write = config.Save
	}
	if err := write(path, config.Defaults()); err != nil {
		Fail(err)
	}

	success("Settings written to " + path)
}

// ConfigShow prints the settings in effect, defaults included
func ConfigShow(_ context.Context) {
	path, err := config.DefaultPath()
	if err != nil {
		Fail(err)
	}
	settings, err := config.Load(path)
	if err != nil {
		Fail(err)
	}

	fmt.Printf("# %s\n", path)
	if err := toml.NewEncoder(os.Stdout).Encode(settings); err != nil {
		Fail(err)
	}
}
