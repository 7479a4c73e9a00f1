package main

import (
	"github.com/porchrate/core/internal/app"
	"github.com/porchrate/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
