//go:build mage
// +build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

func Build() error {
	return sh.Run(mg.GoCmd(), "build", "./...")
}

func Install() error {
	return sh.Run(mg.GoCmd(), "install", "./cmd/scaffold")
}

func Vet() error {
	return sh.Run(mg.GoCmd(), "vet", "./...")
}

func Test() error {
	mg.Deps(Vet)
	args := []string{"test"}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	args = append(args, "./...")
	return sh.Run(mg.GoCmd(), args...)
}
