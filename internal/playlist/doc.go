// Package playlist builds the song selection model.
//
// Each candidate song gets a binary variable. The objective rewards the
// user's normalized (or predicted) rating, songs flagged for exploration,
// and, through one indicator per genre, the number of distinct genres.
// Constraints bound the playlist length and the songs per artist, and can
// require a minimum mean peak score, a number of high-peak anthems, or a
// number of exploration songs. The solved selection is ordered so peak
// scores rise towards a configurable point and fall afterwards.
package playlist
