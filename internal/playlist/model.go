package playlist

import (
	"fmt"
	"sort"

	"playlistopt/internal/genre"
	"playlistopt/internal/milp"
	"playlistopt/internal/textutil"
)

// Model is the optimization model for one set of candidates.
type Model struct {
	*milp.Model
	Candidates []Candidate
	songVars   []milp.Var
	genreVars  map[genre.Genre]milp.Var
}

// Precheck reports infeasibility that is visible without solving.
func Precheck(cands []Candidate, p Params) error {
	if len(cands) < p.MinLength {
		return fmt.Errorf("%w: %d candidates cannot fill a playlist of at least %d songs",
			milp.ErrInfeasible, len(cands), p.MinLength)
	}
	artists := make(map[string]struct{})
	explore, anthems := 0, 0
	for _, c := range cands {
		artists[c.Song.Artist] = struct{}{}
		if c.Explore {
			explore++
		}
		if c.Song.Peak >= p.AnthemThreshold {
			anthems++
		}
	}
	if capacity := p.MaxPerArtist * len(artists); capacity < p.MinLength {
		return fmt.Errorf("%w: %d artists at %d songs each allow only %d songs, need %d",
			milp.ErrInfeasible, len(artists), p.MaxPerArtist, capacity, p.MinLength)
	}
	if p.MinExploration > explore {
		return fmt.Errorf("%w: %d exploration songs required, %d available",
			milp.ErrInfeasible, p.MinExploration, explore)
	}
	if p.MinAnthems > anthems {
		return fmt.Errorf("%w: %d songs with peak >= %g required, %d available",
			milp.ErrInfeasible, p.MinAnthems, p.AnthemThreshold, anthems)
	}
	return nil
}

// Build translates candidates and parameters into a binary model.
func Build(cands []Candidate, p Params) (*Model, error) {
	m := &Model{
		Model:      milp.NewModel("playlist", milp.Maximize),
		Candidates: cands,
		songVars:   make([]milp.Var, len(cands)),
		genreVars:  make(map[genre.Genre]milp.Var),
	}

	var objective, length []milp.Term
	byArtist := make(map[string][]milp.Term)
	byGenre := make(map[genre.Genre][]milp.Term)
	for i, c := range cands {
		v, err := m.AddBinary(fmt.Sprintf("x_%d", i))
		if err != nil {
			return nil, err
		}
		m.songVars[i] = v
		coef := p.Weights.Rating * c.Rating
		if c.Explore {
			coef += p.Weights.Exploration
		}
		objective = append(objective, milp.Term{Var: v, Coef: coef})
		one := milp.Term{Var: v, Coef: 1}
		length = append(length, one)
		byArtist[c.Song.Artist] = append(byArtist[c.Song.Artist], one)
		byGenre[c.Song.Genre] = append(byGenre[c.Song.Genre], one)
	}

	if p.Weights.Diversity > 0 {
		for _, g := range sortedGenres(byGenre) {
			ident := "g_" + textutil.SanitizeIdentifier(string(g))
			v, err := m.AddBinary(ident)
			if err != nil {
				return nil, err
			}
			m.genreVars[g] = v
			objective = append(objective, milp.Term{Var: v, Coef: p.Weights.Diversity})
			// g_k <= sum of x_i in genre k
			terms := append([]milp.Term{{Var: v, Coef: -1}}, byGenre[g]...)
			if err := m.AddConstraint("cover_"+ident, terms, milp.GE, 0); err != nil {
				return nil, err
			}
		}
	}
	if err := m.SetObjective(objective); err != nil {
		return nil, err
	}

	if p.MinLength == p.MaxLength {
		if err := m.AddConstraint("length", length, milp.EQ, float64(p.MinLength)); err != nil {
			return nil, err
		}
	} else {
		if err := m.AddConstraint("length_min", length, milp.GE, float64(p.MinLength)); err != nil {
			return nil, err
		}
		if err := m.AddConstraint("length_max", length, milp.LE, float64(p.MaxLength)); err != nil {
			return nil, err
		}
	}

	taken := make(map[string]bool)
	for _, artist := range sortedKeys(byArtist) {
		base := "artist_" + textutil.SanitizeIdentifier(artist)
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[name] = true
		if err := m.AddConstraint(name, byArtist[artist], milp.LE, float64(p.MaxPerArtist)); err != nil {
			return nil, err
		}
	}

	if p.MinMeanPeak > 0 {
		terms := make([]milp.Term, len(cands))
		for i, c := range cands {
			terms[i] = milp.Term{Var: m.songVars[i], Coef: c.Song.Peak - p.MinMeanPeak}
		}
		if err := m.AddConstraint("peak_mean", terms, milp.GE, 0); err != nil {
			return nil, err
		}
	}
	if p.MinAnthems > 0 {
		var terms []milp.Term
		for i, c := range cands {
			if c.Song.Peak >= p.AnthemThreshold {
				terms = append(terms, milp.Term{Var: m.songVars[i], Coef: 1})
			}
		}
		if err := m.AddConstraint("peak_anthems", terms, milp.GE, float64(p.MinAnthems)); err != nil {
			return nil, err
		}
	}
	if p.MinExploration > 0 {
		var terms []milp.Term
		for i, c := range cands {
			if c.Explore {
				terms = append(terms, milp.Term{Var: m.songVars[i], Coef: 1})
			}
		}
		if err := m.AddConstraint("exploration", terms, milp.GE, float64(p.MinExploration)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Selected returns the candidates chosen by values, in candidate order.
func (m *Model) Selected(values []bool) []Candidate {
	var out []Candidate
	for i, v := range m.songVars {
		if int(v) < len(values) && values[v] {
			out = append(out, m.Candidates[i])
		}
	}
	return out
}

func sortedKeys(m map[string][]milp.Term) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGenres(m map[genre.Genre][]milp.Term) []genre.Genre {
	keys := make([]genre.Genre, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
