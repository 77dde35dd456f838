package models

// ReferenceTeams is the static NBA franchise reference seeded into
// dim_teams at setup. Schedule pages only carry full team names, so this
// table supplies the abbreviation, nickname and location columns. IDs match
// the league's stable franchise identifiers.
var ReferenceTeams = []Team{
	{TeamID: 1610612737, TeamName: "Atlanta Hawks", TeamAbbr: "ATL", Nickname: "Hawks", City: "Atlanta", State: "Georgia"},
	{TeamID: 1610612738, TeamName: "Boston Celtics", TeamAbbr: "BOS", Nickname: "Celtics", City: "Boston", State: "Massachusetts"},
	{TeamID: 1610612739, TeamName: "Cleveland Cavaliers", TeamAbbr: "CLE", Nickname: "Cavaliers", City: "Cleveland", State: "Ohio"},
	{TeamID: 1610612740, TeamName: "New Orleans Pelicans", TeamAbbr: "NOP", Nickname: "Pelicans", City: "New Orleans", State: "Louisiana"},
	{TeamID: 1610612741, TeamName: "Chicago Bulls", TeamAbbr: "CHI", Nickname: "Bulls", City: "Chicago", State: "Illinois"},
	{TeamID: 1610612742, TeamName: "Dallas Mavericks", TeamAbbr: "DAL", Nickname: "Mavericks", City: "Dallas", State: "Texas"},
	{TeamID: 1610612743, TeamName: "Denver Nuggets", TeamAbbr: "DEN", Nickname: "Nuggets", City: "Denver", State: "Colorado"},
	{TeamID: 1610612744, TeamName: "Golden State Warriors", TeamAbbr: "GSW", Nickname: "Warriors", City: "San Francisco", State: "California"},
	{TeamID: 1610612745, TeamName: "Houston Rockets", TeamAbbr: "HOU", Nickname: "Rockets", City: "Houston", State: "Texas"},
	{TeamID: 1610612746, TeamName: "Los Angeles Clippers", TeamAbbr: "LAC", Nickname: "Clippers", City: "Los Angeles", State: "California"},
	{TeamID: 1610612747, TeamName: "Los Angeles Lakers", TeamAbbr: "LAL", Nickname: "Lakers", City: "Los Angeles", State: "California"},
	{TeamID: 1610612748, TeamName: "Miami Heat", TeamAbbr: "MIA", Nickname: "Heat", City: "Miami", State: "Florida"},
	{TeamID: 1610612749, TeamName: "Milwaukee Bucks", TeamAbbr: "MIL", Nickname: "Bucks", City: "Milwaukee", State: "Wisconsin"},
	{TeamID: 1610612750, TeamName: "Minnesota Timberwolves", TeamAbbr: "MIN", Nickname: "Timberwolves", City: "Minneapolis", State: "Minnesota"},
	{TeamID: 1610612751, TeamName: "Brooklyn Nets", TeamAbbr: "BKN", Nickname: "Nets", City: "Brooklyn", State: "New York"},
	{TeamID: 1610612752, TeamName: "New York Knicks", TeamAbbr: "NYK", Nickname: "Knicks", City: "New York", State: "New York"},
	{TeamID: 1610612753, TeamName: "Orlando Magic", TeamAbbr: "ORL", Nickname: "Magic", City: "Orlando", State: "Florida"},
	{TeamID: 1610612754, TeamName: "Indiana Pacers", TeamAbbr: "IND", Nickname: "Pacers", City: "Indianapolis", State: "Indiana"},
	{TeamID: 1610612755, TeamName: "Philadelphia 76ers", TeamAbbr: "PHI", Nickname: "76ers", City: "Philadelphia", State: "Pennsylvania"},
	{TeamID: 1610612756, TeamName: "Phoenix Suns", TeamAbbr: "PHX", Nickname: "Suns", City: "Phoenix", State: "Arizona"},
	{TeamID: 1610612757, TeamName: "Portland Trail Blazers", TeamAbbr: "POR", Nickname: "Trail Blazers", City: "Portland", State: "Oregon"},
	{TeamID: 1610612758, TeamName: "Sacramento Kings", TeamAbbr: "SAC", Nickname: "Kings", City: "Sacramento", State: "California"},
	{TeamID: 1610612759, TeamName: "San Antonio Spurs", TeamAbbr: "SAS", Nickname: "Spurs", City: "San Antonio", State: "Texas"},
	{TeamID: 1610612760, TeamName: "Oklahoma City Thunder", TeamAbbr: "OKC", Nickname: "Thunder", City: "Oklahoma City", State: "Oklahoma"},
	{TeamID: 1610612761, TeamName: "Toronto Raptors", TeamAbbr: "TOR", Nickname: "Raptors", City: "Toronto", State: "Ontario"},
	{TeamID: 1610612762, TeamName: "Utah Jazz", TeamAbbr: "UTA", Nickname: "Jazz", City: "Salt Lake City", State: "Utah"},
	{TeamID: 1610612763, TeamName: "Memphis Grizzlies", TeamAbbr: "MEM", Nickname: "Grizzlies", City: "Memphis", State: "Tennessee"},
	{TeamID: 1610612764, TeamName: "Washington Wizards", TeamAbbr: "WAS", Nickname: "Wizards", City: "Washington", State: "District of Columbia"},
	{TeamID: 1610612765, TeamName: "Detroit Pistons", TeamAbbr: "DET", Nickname: "Pistons", City: "Detroit", State: "Michigan"},
	{TeamID: 1610612766, TeamName: "Charlotte Hornets", TeamAbbr: "CHA", Nickname: "Hornets", City: "Charlotte", State: "North Carolina"},
}
