package main

import "eventhub/internal/app"

// @title           EventHub API
// @version         1.0
// @description     Backend for listing and managing technology events.
// @BasePath        /
func main() {
	app.Run()
}
