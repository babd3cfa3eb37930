package viewmodel

import "github.com/gofiber/fiber/v2"

type Layout struct {
	Title      string
	IsLoggedIn bool
	Username   string
	Plan       string
	CSRF       string
	Msg        fiber.Map
}
