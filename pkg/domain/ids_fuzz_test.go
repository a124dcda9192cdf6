package domain

import (
	"testing"
)

// FuzzParseMovieID checks that parsing never panics and accepted ids round-trip.
func FuzzParseMovieID(f *testing.F) {
	f.Add("")
	f.Add("42")
	f.Add("999")
	f.Add("-1")
	f.Add("9223372036854775808")
	f.Add("'; DROP TABLE movies;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseMovieID(input)
		if err != nil {
			return
		}
		if id <= 0 {
			t.Errorf("accepted non-positive id %d from %q", id, input)
		}
		roundTrip, err := ParseMovieID(id.String())
		if err != nil {
			t.Errorf("valid id failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
	})
}
