package main

import (
	"math/rand"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/scrivener/internal/scriptorium"
)

func main() {
	rand.New(rand.NewSource(time.Now().UTC().UnixNano()))

	scriptorium.NewApp("scriptorium").Run()
}
