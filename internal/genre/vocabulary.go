package genre

// Genre is an entry of the controlled vocabulary.
type Genre string

const (
	HipHop     Genre = "hip hop"
	Metal      Genre = "metal"
	Punk       Genre = "punk"
	Electronic Genre = "electronic"
	RnB        Genre = "r&b"
	Jazz       Genre = "jazz"
	Blues      Genre = "blues"
	Latin      Genre = "latin"
	Reggae     Genre = "reggae"
	Country    Genre = "country"
	Indie      Genre = "indie"
	Folk       Genre = "folk"
	Classical  Genre = "classical"
	Soundtrack Genre = "soundtrack"
	Rock       Genre = "rock"
	Pop        Genre = "pop"
	// Other collects every tag no rule matches.
	Other Genre = "other"
)

// rule maps folded text to a genre. Substrings match anywhere in the folded
// text; Words must match whole tokens (or whole token runs for multi-word
// phrases) so short keywords such as "emo" or "ska" do not fire inside longer
// words.
type rule struct {
	genre      Genre
	substrings []string
	words      []string
}

// rules is evaluated top to bottom; the first matching rule wins.
var rules = []rule{
	{genre: HipHop, substrings: []string{"hip hop", "hiphop", "rap"}, words: []string{"trap", "drill", "grime", "boom bap"}},
	{genre: Metal, substrings: []string{"metal", "djent", "grindcore", "deathcore"}},
	{genre: Punk, substrings: []string{"punk", "hardcore"}, words: []string{"emo", "screamo", "oi"}},
	{genre: Electronic, substrings: []string{"electro", "techno", "trance", "dubstep", "house", "synth", "ambient", "downtempo", "chillwave", "breakbeat", "jungle"}, words: []string{"edm", "idm", "dnb", "drum and bass", "drum & bass", "drum n bass", "garage", "rave", "dance electronic"}},
	{genre: RnB, substrings: []string{"soul", "funk", "motown", "rhythm and blues"}, words: []string{"r & b", "rnb", "r n b", "new jack swing"}},
	{genre: Jazz, substrings: []string{"jazz", "bebop", "bossa", "swing"}},
	{genre: Blues, substrings: []string{"blues"}},
	{genre: Latin, substrings: []string{"latin", "reggaeton", "salsa", "bachata", "cumbia", "merengue", "samba", "tango", "corrido"}, words: []string{"mpb", "urbano"}},
	{genre: Reggae, substrings: []string{"reggae", "dancehall", "rocksteady"}, words: []string{"ska", "dub"}},
	{genre: Country, substrings: []string{"country", "bluegrass", "americana", "honky tonk"}},
	{genre: Indie, substrings: []string{"indie", "lo fi", "lofi", "bedroom"}},
	{genre: Folk, substrings: []string{"folk", "singer songwriter", "acoustic"}},
	{genre: Classical, substrings: []string{"classical", "orchestra", "baroque", "opera", "symphon", "chamber", "romantic era"}, words: []string{"piano"}},
	{genre: Soundtrack, substrings: []string{"soundtrack", "score", "video game", "anime", "musical", "show tunes"}},
	{genre: Rock, substrings: []string{"rock", "grunge", "shoegaze", "psychedel", "britpop", "new wave"}, words: []string{"alternative", "alt"}},
	{genre: Pop, substrings: []string{"pop", "disco", "boy band", "girl group"}, words: []string{"dance", "idol"}},
}

// Vocabulary returns every genre in priority order, Other last.
func Vocabulary() []Genre {
	out := make([]Genre, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.genre)
	}
	return append(out, Other)
}

// Valid reports whether g is part of the controlled vocabulary.
func Valid(g Genre) bool {
	if g == Other {
		return true
	}
	for _, r := range rules {
		if r.genre == g {
			return true
		}
	}
	return false
}
