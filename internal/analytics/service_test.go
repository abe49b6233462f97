package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/dataset/datasettest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(datasettest.Provider(), nil)
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		want    Gender
		wantErr bool
	}{
		{"", GenderAll, false},
		{"all", GenderAll, false},
		{"Total", GenderAll, false},
		{"MALE", GenderMale, false},
		{" female ", GenderFemale, false},
		{"other", GenderAll, true},
	}

	for _, tc := range tests {
		got, err := ParseGender(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFilter, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestResolveYear(t *testing.T) {
	svc := newTestService(t)

	y, err := svc.ResolveYear(dataset.City, "2019")
	require.NoError(t, err)
	assert.Equal(t, "2019", y)

	for _, in := range []string{"", "1999", "all"} {
		y, err = svc.ResolveYear(dataset.City, in)
		require.NoError(t, err)
		assert.Equal(t, "2020", y, in)
	}

	empty := NewService(dataset.NewStaticProvider(), nil)
	_, err = empty.ResolveYear(dataset.City, "2020")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCities_SortedDistinctWithoutTotal(t *testing.T) {
	svc := newTestService(t)

	for _, year := range []string{"2016", "2019", "2020", "all"} {
		cities, err := svc.Cities(year)
		require.NoError(t, err)
		assert.IsIncreasing(t, cities, year)
		for _, c := range cities {
			assert.False(t, dataset.IsTotalLabel(c), c)
		}
	}

	cities, err := svc.Cities("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bengaluru", "Chennai", "Delhi (UT)", "Kolkata", "Mumbai"}, cities)
}

func TestCityComparison_SumsToYearTrend(t *testing.T) {
	svc := newTestService(t)

	trend, err := svc.YearTrend()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"2016": datasettest.Total2016,
		"2019": datasettest.Total2019,
		"2020": datasettest.Total2020,
	}, trend)

	for year, total := range trend {
		comparison, err := svc.CityComparison(year)
		require.NoError(t, err)
		assert.Equal(t, total, comparison.Sum(), year)
	}
}

func TestCityComparison_Descending(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.CityComparison("2020")
	require.NoError(t, err)
	assert.Equal(t, Ranking{
		{"Delhi (UT)", 22000},
		{"Mumbai", 15060},
		{"Bengaluru", 7550},
		{"Chennai", 5200},
		{"Kolkata", 3710},
	}, got)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, `{"Delhi (UT)":22000,"Mumbai":15060,"Bengaluru":7550,"Chennai":5200,"Kolkata":3710}`, string(raw))
}

func TestGenderRatio(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GenderRatio("2020")
	require.NoError(t, err)
	assert.Equal(t, GenderRatio{Male: 47500, Female: 6020, Ratio: 7.89}, got)

	all, err := svc.GenderRatio("all")
	require.NoError(t, err)
	assert.Equal(t, int64(114500), all.Male)
	assert.Equal(t, int64(13420), all.Female)
	assert.Equal(t, 8.53, all.Ratio)

	trend, err := svc.GenderRatioTrend()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"2016": 8.82, "2019": 9.25, "2020": 7.89}, trend)
}

func TestGenderRatio_ZeroFemale(t *testing.T) {
	p := dataset.NewStaticProvider()
	p.Add(dataset.City, "2020", dataset.NewTable(
		[]string{"City", "Total - Male", "Total - Female"},
		[][]string{{"Agra", "10", "0"}, {"Pune", "5", ""}},
	))
	svc := NewService(p, nil)

	got, err := svc.GenderRatio("2020")
	require.NoError(t, err)
	assert.Equal(t, GenderRatio{Male: 15, Female: 0, Ratio: 0}, got)

	trend, err := svc.GenderRatioTrend()
	require.NoError(t, err)
	assert.Equal(t, 0.0, trend["2020"])
}

func TestProfile(t *testing.T) {
	svc := newTestService(t)

	all, err := svc.Profile("2020", "all")
	require.NoError(t, err)
	assert.Len(t, all, len(ProfileColumns))
	assert.Equal(t, int64(53520), all[dataset.ColTotalArrested])
	assert.Equal(t, int64(1550), all[dataset.ColJuvenileBoys])
	assert.Equal(t, int64(1720), all[dataset.ColJuvenileTotal])

	// unknown cities fall back to the aggregate row
	unknown, err := svc.Profile("2020", "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, all, unknown)

	mumbai, err := svc.Profile("all", "Mumbai")
	require.NoError(t, err)
	assert.Equal(t, int64(15060+15500+13300), mumbai[dataset.ColTotalArrested])
}

func TestCityProfile_Strict(t *testing.T) {
	svc := newTestService(t)

	delhi, err := svc.CityProfile("2020", "delhi")
	require.NoError(t, err)
	assert.Equal(t, int64(22000), delhi[dataset.ColTotalArrested])
	assert.Equal(t, int64(9000), delhi["18 and above and below 30 years - Male"])

	_, err = svc.CityProfile("2020", "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestCityYearTotalAndTrend(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.CityYearTotal("2020", "Mumbai", GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, int64(1660), v)

	_, err = svc.CityYearTotal("2019", "Kolkata", GenderAll)
	assert.ErrorIs(t, err, ErrCityNotFound)

	trend, err := svc.CityTrend("Kolkata", nil, GenderAll)
	require.NoError(t, err)
	assert.Equal(t, Ranking{{"2016", 3300}, {"2020", 3710}}, trend)

	_, err = svc.CityTrend("Atlantis", nil, GenderAll)
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestFilter(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name                 string
		year, city, age      string
		gender               Gender
		wantGrand, wantTotal int64
	}{
		{"age and gender", "2020", "all", "18-30", GenderMale, 53520, 21500},
		{"gender for a city", "2020", "Delhi", "", GenderFemale, 22000, 2500},
		{"everything", "all", "all", "all", GenderAll, 127920, 127920},
		{"unknown city", "2020", "Atlantis", "", GenderAll, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Filter(tc.year, tc.city, tc.age, tc.gender)
			require.NoError(t, err)
			assert.Equal(t, FilterResult{GrandTotal: tc.wantGrand, FilteredTotal: tc.wantTotal}, got)
		})
	}

	_, err := svc.Filter("2020", "all", "10-20", GenderAll)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestAgeTrends(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.AgeTrend("60 years and above")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2016": 1670, "2019": 2050, "2020": 1540}, got)

	male, err := svc.AgeGenderTrend("60 years and above", GenderMale)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), male["2020"])

	_, err = svc.AgeTrend("")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestGenderCityComparison(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.GenderCityComparison(GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, Ranking{
		{"delhiut", 6300},
		{"mumbai", 4460},
		{"chennai", 1100},
		{"bengaluru", 850},
		{"kolkata", 710},
	}, got)
}

func TestYearCityFilter(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.YearCityFilter("2020", "18-30", GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, []int64{1200, 800, 400, 300, 200}, got.Values())

	byGender, err := svc.YearGenderCity("2020", GenderMale)
	require.NoError(t, err)
	assert.Equal(t, "Delhi (UT)", byGender[0].Label)
	assert.Equal(t, int64(19500), byGender[0].Value)
}

func TestKPIs(t *testing.T) {
	svc := newTestService(t)

	home, err := svc.HomeKPIs()
	require.NoError(t, err)
	assert.Equal(t, "2020", home.Year)
	assert.Equal(t, int64(65976690), home.Total)
	assert.Equal(t, int64(34823983), home.Male)
	assert.Equal(t, int64(31152707), home.Female)
	assert.Equal(t, int64(53520), home.TotalArrests)
	assert.Equal(t, 100.0, home.CrimeConcentration)

	all, err := svc.AllKPIs()
	require.NoError(t, err)
	assert.Equal(t, int64(127920), all.TotalAll)
	assert.Equal(t, "2020", all.HighestYear)
	assert.Equal(t, "2016", all.LowestYear)
	assert.Equal(t, int64(42640), all.Average)

	report, err := svc.ReportsSummary()
	require.NoError(t, err)
	assert.Equal(t, ReportsSummary{
		TotalArrests:       127920,
		Top10Concentration: 100,
		JuvenilePct:        3.3,
		GenderRatio:        8.53,
	}, report)
}

func TestPopulation(t *testing.T) {
	svc := newTestService(t)

	mumbai, err := svc.Population("2020", "mumbai")
	require.NoError(t, err)
	assert.Equal(t, Population{Total: 18394912, Male: 9894088, Female: 8500824}, mumbai)

	fallback, err := svc.Population("2020", "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, int64(65976690), fallback.Total)
}

func TestRanking_StableOrdering(t *testing.T) {
	r := Ranking{{"a", 5}, {"b", 9}, {"c", 5}, {"d", 1}, {"e", 9}}

	assert.Equal(t, []string{"b", "e", "a", "c", "d"}, r.Descending().Labels())
	assert.Equal(t, []string{"d", "a", "c", "b", "e"}, r.Ascending().Labels())
	// the receiver is untouched
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, r.Labels())
	assert.Equal(t, Ranking{{"a", 5}, {"b", 9}}, r.Head(2))
	assert.Equal(t, map[string]int64{"a": 5, "b": 9, "c": 5, "d": 1, "e": 9}, r.Map())
}
