/*
Package raindrop synthesizes photorealistic raindrop artifacts over a source
image and can emit a pixel accurate label mask of the droplet coverage.
It is meant to be used as a data augmentation primitive for training vision
models that must stay robust under wet-lens and rain conditions.

The package ships a command line tool for batch processing a directory of
images. To check the supported options type:

	$ raindrop --help

In case you wish to integrate the API in a self constructed environment here
is a simple example:

	package main

	import (
		"fmt"
		"image"
		"math/rand"

		"github.com/droplens/raindrop"
	)

	func main() {
		cfg := raindrop.DefaultConfig()
		gen, err := raindrop.NewGenerator(cfg, rand.New(rand.NewSource(1)))
		if err != nil {
			fmt.Printf("invalid configuration: %s", err.Error())
			return
		}

		var src image.Image // load the source image here
		out, label, err := gen.GenerateDrops(src)
		if err != nil {
			fmt.Printf("error generating droplets: %s", err.Error())
			return
		}
		_, _ = out, label
	}
*/
package raindrop
