package services

import (
	"sort"
	"strings"
	"time"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/6tail/lunar-go/calendar"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/be"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/ch"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fi"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/ie"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/no"
	"github.com/rickar/cal/v2/nz"
	"github.com/rickar/cal/v2/pl"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/se"
	"github.com/rickar/cal/v2/us"
)

// countryCalendars lists the public-holiday calendars a project can pick.
// CN has no entry here because it is resolved through the lunar calendar.
var countryCalendars = []struct {
	Code     string
	Name     string
	Holidays []*cal.Holiday
}{
	{"US", "United States", us.Holidays},
	{"GB", "United Kingdom", gb.Holidays},
	{"IE", "Ireland", ie.Holidays},
	{"CA", "Canada", ca.Holidays},
	{"AU", "Australia", au.HolidaysNSW},
	{"NZ", "New Zealand", nz.Holidays},
	{"DE", "Germany", de.Holidays},
	{"AT", "Austria", at.Holidays},
	{"CH", "Switzerland", ch.Holidays},
	{"FR", "France", fr.Holidays},
	{"BE", "Belgium", be.Holidays},
	{"NL", "Netherlands", nl.Holidays},
	{"IT", "Italy", it.Holidays},
	{"ES", "Spain", es.Holidays},
	{"PT", "Portugal", pt.Holidays},
	{"SE", "Sweden", se.Holidays},
	{"NO", "Norway", no.Holidays},
	{"DK", "Denmark", dk.Holidays},
	{"FI", "Finland", fi.Holidays},
	{"PL", "Poland", pl.Holidays},
	{"JP", "Japan", jp.Holidays},
	{"BR", "Brazil", br.Holidays},
}

const countryChina = "CN"

type CountryInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NormalizeCountry upper-cases a country code and reports whether a
// holiday calendar exists for it. The empty code means "no calendar" and
// is valid.
func NormalizeCountry(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == countryChina {
		return code, true
	}
	for _, c := range countryCalendars {
		if c.Code == code {
			return code, true
		}
	}
	return code, false
}

// HolidayService names the public holiday a milestone date falls on.
type HolidayService struct {
	calendars map[string]*cal.BusinessCalendar
	countries []CountryInfo
}

func NewHolidayService() *HolidayService {
	s := &HolidayService{
		calendars: make(map[string]*cal.BusinessCalendar, len(countryCalendars)),
		countries: []CountryInfo{{Code: countryChina, Name: "China"}},
	}
	for _, c := range countryCalendars {
		bc := cal.NewBusinessCalendar()
		bc.Name = c.Name
		bc.AddHoliday(c.Holidays...)
		s.calendars[c.Code] = bc
		s.countries = append(s.countries, CountryInfo{Code: c.Code, Name: c.Name})
	}
	sort.Slice(s.countries, func(i, j int) bool { return s.countries[i].Name < s.countries[j].Name })
	return s
}

// HolidayName returns the public holiday falling on t in the given
// country, or "" for a normal day or an unknown country.
func (s *HolidayService) HolidayName(t time.Time, countryCode string) string {
	code, _ := NormalizeCountry(countryCode)
	if code == countryChina {
		return chinaHolidayName(t)
	}

	c, ok := s.calendars[code]
	if !ok {
		return ""
	}
	actual, observed, h := c.IsHoliday(t)
	if (actual || observed) && h != nil {
		return h.Name
	}
	return ""
}

// chinaHolidayName uses the official schedule; adjusted working days
// (调休) are not holidays.
func chinaHolidayName(t time.Time) string {
	solar := calendar.NewSolarFromDate(t)
	holiday := HolidayUtil.GetHolidayByYmd(solar.GetYear(), solar.GetMonth(), solar.GetDay())
	if holiday == nil || holiday.IsWork() {
		return ""
	}
	return holiday.GetName()
}

// GetSupportedCountries lists the selectable calendars by name.
func (s *HolidayService) GetSupportedCountries() []CountryInfo {
	return s.countries
}
