package resource

import "github.com/enescakir/emoji"

// chat commands, matched case-insensitively
const (
	CmdHelp      = "!bingo"
	CmdHelpAlias = "!bingohelp"
	CmdStart     = "!bingostart"
	CmdActivate  = "!bingoactivate"
	CmdEnd       = "!bingoend"
	CmdStop      = "!bingostop"
	CmdJoin      = "!bingojoin"
	CmdCheck     = "!bingocheck"
	CmdUncheck   = "!bingouncheck"
	CmdShow      = "!bingoshow"
	CmdApprove   = "!bingoapprove"
	CmdReject    = "!bingoreject"
	CmdPending   = "!bingopending"
	CmdStatus    = "!bingostatus"
	CmdAdd       = "!bingoadd"

	CommandPrefix = "!bingo"
)

var (
	TextHelp = emoji.GameDie.String() + " Bingo: " + CmdJoin + " to get a card, " + CmdCheck + " N to mark square N, " +
		CmdUncheck + " N to clear it, " + CmdShow + " to see your card, " + CmdStatus + " for the game state. " +
		"Complete a row, a column or a diagonal to win!"

	TextGameStarted         = emoji.GameDie.String() + " Bingo started with %dx%d cards! Type " + CmdJoin + " to play"
	TextGameStartedApproval = TextGameStarted + ", a moderator confirms every bingo"
	TextGameEnded           = emoji.ChequeredFlag.String() + " Bingo is over, thanks for playing!"
	TextGameNotRunning      = "No bingo game is running"

	TextJoined         = "@%s here is your card: %s"
	TextAlreadyJoined  = "@%s you already have a card, type " + CmdShow + " to see it"
	TextNotJoined      = "@%s you have no card yet, type " + CmdJoin
	TextAlreadyWon     = "@%s your card is already complete"
	TextPositionRange  = "@%s pick a square number from your card (" + CmdShow + ")"
	TextAlreadyMarked  = "@%s square %d is already marked"
	TextAlreadyCleared = "@%s square %d is not marked"
	TextMarked         = "@%s %s"
	TextWon            = emoji.Trophy.String() + " BINGO! @%s completed a line!"
	TextSubmitted      = emoji.HourglassNotDone.String() + " @%s completed a line, waiting for a moderator: " +
		CmdApprove + " %s or " + CmdReject + " %s"
	TextNoPhrases = emoji.CrossMark.String() + " @%s there are not enough phrases left for a new card"

	TextApproved           = emoji.Trophy.String() + " BINGO confirmed for @%s!"
	TextRejected           = "@%s your bingo was not confirmed, keep playing"
	TextNotAwaiting        = "@%s has no bingo waiting for approval"
	TextPending            = "Waiting for approval: %s"
	TextNothingPending     = "No bingo is waiting for approval"
	TextPhrasesAdded       = "Added %d phrases to the pool"
	TextInvalidShape       = "Cards must be between 1x1 and %dx%d"
	TextModeratorsOnly     = "@%s only moderators can do that"
	TextTransientFailure   = emoji.Warning.String() + " @%s something went wrong, please try again"
	TextUsageCheck         = "Usage: " + CmdCheck + " N"
	TextUsageUncheck       = "Usage: " + CmdUncheck + " N"
	TextUsageStart         = "Usage: " + CmdStart + " [ROWSxCOLUMNS]"
	TextUsageApprove       = "Usage: " + CmdApprove + " USER"
	TextUsageReject        = "Usage: " + CmdReject + " USER"
	TextUsageAdd           = "Usage: " + CmdAdd + " PHRASE[; PHRASE...]"
	TextStatusRunning      = "Bingo is running"
	TextStatusNotRunning   = "Bingo is not running"
	TextStatusApprovalNote = "moderator approval"
)
