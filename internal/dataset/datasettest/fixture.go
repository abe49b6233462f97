// Package datasettest builds small in-memory tables shaped like the real
// arrest, government and foreigner files.
package datasettest

import (
	"strconv"

	"github.com/crimelens/crime-analytics/internal/dataset"
)

// AgeBands are the column prefixes of the four adult age bands, youngest first.
var AgeBands = []string{
	"18 and above and below 30 years",
	"30 and above and below 45 years",
	"45 and above and below 60 years",
	"60 years and above",
}

// CityRow describes one row of an arrest table. Male and Female hold the
// per-age-band counts; totals are derived.
type CityRow struct {
	City       string
	Male       [4]int64
	Female     [4]int64
	Boys       int64
	Girls      int64
	Population [3]string // total, male, female as written in the file
}

// MaleTotal sums the male age bands.
func (r CityRow) MaleTotal() int64 { return sum(r.Male) }

// FemaleTotal sums the female age bands.
func (r CityRow) FemaleTotal() int64 { return sum(r.Female) }

// Total is the persons-arrested total.
func (r CityRow) Total() int64 { return r.MaleTotal() + r.FemaleTotal() }

// Split spreads male and female totals over the age bands 50/30/15/5, with
// any rounding remainder in the last band.
func Split(city string, male, female, boys, girls int64, pop [3]string) CityRow {
	return CityRow{
		City:       city,
		Male:       spread(male),
		Female:     spread(female),
		Boys:       boys,
		Girls:      girls,
		Population: pop,
	}
}

// CityHeader is the header of an arrest table.
func CityHeader() []string {
	h := []string{
		" City ",
		"Total Population",
		"Male Population",
		"Female Population",
		dataset.ColJuvenileBoys,
		dataset.ColJuvenileGirls,
		dataset.ColJuvenileTotal,
	}
	for _, band := range AgeBands {
		h = append(h, band+" - Male", band+" - Female", band+" - Total")
	}
	// the real files carry inconsistent spacing in this header
	return append(h, "Total -  Male", "Total - Female ", dataset.ColTotalArrested)
}

// CityTable builds an arrest table. When totalLabel is non-empty an aggregate
// row summing every city row is appended under that label.
func CityTable(rows []CityRow, totalLabel string, totalPopulation [3]string) *dataset.Table {
	records := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		records = append(records, cityRecord(r))
	}

	if totalLabel != "" {
		agg := CityRow{City: totalLabel, Population: totalPopulation}
		for _, r := range rows {
			for i := range agg.Male {
				agg.Male[i] += r.Male[i]
				agg.Female[i] += r.Female[i]
			}
			agg.Boys += r.Boys
			agg.Girls += r.Girls
		}
		records = append(records, cityRecord(agg))
	}

	return dataset.NewTable(CityHeader(), records)
}

func cityRecord(r CityRow) []string {
	rec := []string{
		r.City,
		r.Population[0],
		r.Population[1],
		r.Population[2],
		itoa(r.Boys),
		itoa(r.Girls),
		itoa(r.Boys + r.Girls),
	}
	for i := range AgeBands {
		rec = append(rec, itoa(r.Male[i]), itoa(r.Female[i]), itoa(r.Male[i]+r.Female[i]))
	}
	return append(rec, itoa(r.MaleTotal()), itoa(r.FemaleTotal()), itoa(r.Total()))
}

// Rows2020 are the 2020 arrest rows, in file order.
var Rows2020 = []CityRow{
	{
		City:       "Delhi (UT)",
		Male:       [4]int64{9000, 7000, 3000, 500},
		Female:     [4]int64{1200, 900, 300, 100},
		Boys:       900,
		Girls:      100,
		Population: [3]string{"16,349,831", "8,887,326", "7,462,505"},
	},
	{
		City:       "Mumbai",
		Male:       [4]int64{6000, 5000, 2000, 400},
		Female:     [4]int64{800, 600, 200, 60},
		Boys:       400,
		Girls:      40,
		Population: [3]string{"18,394,912", "9,894,088", "8,500,824"},
	},
	{
		City:       "Bengaluru",
		Male:       [4]int64{3000, 2500, 1000, 200},
		Female:     [4]int64{400, 300, 100, 50},
		Boys:       120,
		Girls:      15,
		Population: [3]string{"8,520,435", "4,391,723", "4,128,712"},
	},
	{
		City:       "Chennai",
		Male:       [4]int64{2000, 1800, 700, 100},
		Female:     [4]int64{300, 200, 80, 20},
		Boys:       80,
		Girls:      10,
		Population: [3]string{"8,653,521", "4,361,662", "4,291,859"},
	},
	{
		City:       "Kolkata",
		Male:       [4]int64{1500, 1200, 500, 100},
		Female:     [4]int64{200, 150, 50, 10},
		Boys:       50,
		Girls:      5,
		Population: [3]string{"14,057,991", "7,289,184", "6,768,807"},
	},
}

// Rows2019 are the 2019 arrest rows.
var Rows2019 = []CityRow{
	Split("Delhi (UT)", 18000, 2000, 800, 90, [3]string{"16,349,831", "8,887,326", "7,462,505"}),
	Split("Mumbai", 14000, 1500, 350, 30, [3]string{"18,394,912", "9,894,088", "8,500,824"}),
	Split("Chennai", 5000, 500, 70, 8, [3]string{"8,653,521", "4,361,662", "4,291,859"}),
}

// Rows2016 are the 2016 arrest rows.
var Rows2016 = []CityRow{
	Split("Delhi (UT)", 15000, 1800, 700, 80, [3]string{"16,349,831", "8,887,326", "7,462,505"}),
	Split("Mumbai", 12000, 1300, 300, 25, [3]string{"18,394,912", "9,894,088", "8,500,824"}),
	Split("Kolkata", 3000, 300, 40, 4, [3]string{"14,057,991", "7,289,184", "6,768,807"}),
}

// Population of the aggregate row in every fixture year.
var TotalPopulation = [3]string{"65,976,690", "34,823,983", "31,152,707"}

// Year totals of the fixture, city rows only.
const (
	Total2016 int64 = 33400
	Total2019 int64 = 41000
	Total2020 int64 = 53520
)

// GovernmentHeader is the header of a government crime-head table.
var GovernmentHeader = []string{"Crime Head", "Cases Registered", "Persons Arrested", "Persons Convicted"}

// GovernmentRecords2020 are the 2020 government rows.
var GovernmentRecords2020 = [][]string{
	{"Murder", "29,193", "35,000", "4,100"},
	{"Kidnapping", "84,805", "50,200", "2,900"},
	{"Theft", "3,99,000", "1,20,000", "20,000"},
	{"Cyber Crime", "50,035", "10,000", "800"},
}

// GovernmentRecords2019 are the 2019 government rows.
var GovernmentRecords2019 = [][]string{
	{"Murder", "28,918", "34,000", "4,000"},
	{"Theft", "4,10,000", "1,30,000", "21,000"},
}

// ForeignHeader is the header of a foreigner crime table.
var ForeignHeader = []string{"Crime Head", "Cases Registered", "Foreigners Arrested"}

// ForeignRecords2020 are the 2020 foreigner rows.
var ForeignRecords2020 = [][]string{
	{"Theft", "120", "150"},
	{"Cheating", "80", "95"},
	{"Drug Offences", "300", "410"},
}

// ForeignRecords2016 are the 2016 foreigner rows.
var ForeignRecords2016 = [][]string{
	{"Theft", "100", "110"},
	{"Drug Offences", "250", "300"},
}

// Provider returns the standard fixture: arrests for 2016, 2019 and 2020,
// government tables for 2019 and 2020, foreigner tables for 2016 and 2020.
func Provider() *dataset.StaticProvider {
	p := dataset.NewStaticProvider()

	p.Add(dataset.City, "2016", CityTable(Rows2016, "TOTAL", TotalPopulation))
	p.Add(dataset.City, "2019", CityTable(Rows2019, "Total", TotalPopulation))
	p.Add(dataset.City, "2020", CityTable(Rows2020, "Total (Cities)", TotalPopulation))

	p.Add(dataset.Government, "2019", dataset.NewTable(GovernmentHeader, GovernmentRecords2019))
	p.Add(dataset.Government, "2020", dataset.NewTable(GovernmentHeader, GovernmentRecords2020))

	p.Add(dataset.Foreign, "2016", dataset.NewTable(ForeignHeader, ForeignRecords2016))
	p.Add(dataset.Foreign, "2020", dataset.NewTable(ForeignHeader, ForeignRecords2020))

	return p
}

func spread(total int64) [4]int64 {
	weights := [4]int64{50, 30, 15}
	var out [4]int64
	var used int64
	for i := 0; i < 3; i++ {
		out[i] = total * weights[i] / 100
		used += out[i]
	}
	out[3] = total - used
	return out
}

func sum(v [4]int64) int64 {
	return v[0] + v[1] + v[2] + v[3]
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
