package main

import (
	"github.com/clubdata/clubsync/cmd"
	"github.com/clubdata/clubsync/utils"
)

func main() {
	utils.LoadEnv()
	cmd.Execute()
}
