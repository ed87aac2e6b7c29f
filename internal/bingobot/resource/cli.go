package resource

const (
	ProjectName    = "bingo"
	ProjectVersion = "v0.1.0"
	GithubURL      = "https://github.com/bloops-games/bingo"
	TwitchTokenURL = "https://dev.twitch.tv/docs/irc/authenticate-bot/"
)

var Graffiti = `
 _     _
| |__ (_)_ __   __ _  ___
| '_ \| | '_ \ / _' |/ _ \
| |_) | | | | | (_| | (_) |
|_.__/|_|_| |_|\__, |\___/
               |___/
`

var GreetingCLI = "%s %s, live chat bingo\n%s\n\n"
