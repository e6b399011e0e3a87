package main

import (
	"dishguru-api/app"
)

// @title           DishGuru API
// @version         1.0
// @description     Recipe generation, search, favorites and ratings.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
