package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/routeslope/internal/core/domain"
)

// slopeBody is the request payload; points are [lat, lon] pairs.
type slopeBody struct {
	Origin      []float64 `json:"origin"`
	Destination []float64 `json:"destination"`
}

// SlopeHandler analyses the route between origin and destination.
func SlopeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body slopeBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		req, err := body.toRequest()
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		report, err := deps.Slope.Analyze(c.UserContext(), req)
		if err != nil {
			return errDomain(c, err)
		}

		return c.JSON(report)
	}
}

func (b slopeBody) toRequest() (domain.SlopeRequest, error) {
	origin, err := pointFromPair("origin", b.Origin)
	if err != nil {
		return domain.SlopeRequest{}, err
	}
	dest, err := pointFromPair("destination", b.Destination)
	if err != nil {
		return domain.SlopeRequest{}, err
	}
	return domain.SlopeRequest{Origin: origin, Destination: dest}, nil
}

// pointFromPair turns a [lat, lon] pair into a GeoPoint. Range checks
// happen in the slope service.
func pointFromPair(field string, pair []float64) (domain.GeoPoint, error) {
	if len(pair) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("%s must be a [lat, lon] pair", field)
	}
	return domain.GeoPoint{Lat: pair[0], Lon: pair[1]}, nil
}
