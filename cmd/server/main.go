package main

import (
	"github.com/scenewatch/vision-backend/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
