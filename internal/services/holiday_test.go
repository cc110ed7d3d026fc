package services

import (
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestHolidayService_HolidayName(t *testing.T) {
	service := NewHolidayService()

	tests := []struct {
		name     string
		date     time.Time
		country  string
		contains string
		empty    bool
	}{
		{"us independence day", date(2025, time.July, 4), "US", "Independence", false},
		{"gb christmas", date(2025, time.December, 25), "gb", "Christmas", false},
		{"us ordinary wednesday", date(2025, time.March, 12), "US", "", true},
		{"china national day", date(2025, time.October, 1), "CN", "", false},
		{"unknown country", date(2025, time.December, 25), "ZZ", "", true},
		{"no calendar", date(2025, time.December, 25), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.HolidayName(tt.date, tt.country)
			if tt.empty && got != "" {
				t.Errorf("HolidayName() = %q, want empty", got)
			}
			if !tt.empty && got == "" {
				t.Errorf("HolidayName() empty, want a holiday")
			}
			if tt.contains != "" && !strings.Contains(got, tt.contains) {
				t.Errorf("HolidayName() = %q, want it to contain %q", got, tt.contains)
			}
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{" gb ", "GB", true},
		{"cn", "CN", true},
		{"", "", true},
		{"zz", "ZZ", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeCountry(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeCountry(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHolidayService_SupportedCountries(t *testing.T) {
	service := NewHolidayService()
	countries := service.GetSupportedCountries()
	if len(countries) != len(countryCalendars)+1 {
		t.Fatalf("got %d countries, want %d", len(countries), len(countryCalendars)+1)
	}
	for i, c := range countries {
		if i > 0 && countries[i-1].Name > c.Name {
			t.Errorf("countries not sorted by name at %s", c.Name)
		}
		if _, ok := NormalizeCountry(c.Code); !ok {
			t.Errorf("listed country %s is not accepted", c.Code)
		}
	}
}
