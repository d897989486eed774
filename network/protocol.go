package network

// Client -> server messages.
const (
	MsgTypeHeartbeat     = 1
	MsgTypeJoinRoom      = 101
	MsgTypeLeaveRoom     = 102
	MsgTypeStartGame     = 103
	MsgTypeGuess         = 104
	MsgTypeWordSelect    = 105
	MsgTypeChangeSetting = 106
	MsgTypeVoteKick      = 107
	MsgTypeReaction      = 108

	MsgTypeDrawStart = 110
	MsgTypeDrawPoint = 111
	MsgTypeDrawEnd   = 112
	MsgTypeDrawClear = 113
	MsgTypeDrawUndo  = 114
	MsgTypeDrawSync  = 115
)

// Server -> client messages.
const (
	MsgTypeError = 200

	MsgTypeJoinedRoom      = 301
	MsgTypePlayerJoined    = 302
	MsgTypePlayerLeft      = 303
	MsgTypeGameStarted     = 304
	MsgTypeGameEnded       = 305
	MsgTypeChooseWord      = 306
	MsgTypeChoosingWord    = 307
	MsgTypeWordChosen      = 308
	MsgTypeGuessWordChosen = 309
	MsgTypeGuessed         = 310
	MsgTypeGuessChat       = 311
	MsgTypeTurnEnded       = 312
	MsgTypeDrawData        = 313
	MsgTypeDrawFull        = 314
	MsgTypeClearDraw       = 315
	MsgTypeUndoDraw        = 316
	MsgTypeGuessHint       = 317
	MsgTypeSettingsChanged = 318
	MsgTypeKickVote        = 319
	MsgTypeKicked          = 320
	MsgTypeGameState       = 321
	MsgTypeReactionEvent   = 322
	MsgTypeNotice          = 323
)
