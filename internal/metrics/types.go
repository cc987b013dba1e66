package metrics

// Metrics is one day's raw Copilot usage snapshot as returned by the GitHub
// metrics API or stored in the metrics history table. Every nested block is
// optional; absent counters contribute zero.
type Metrics struct {
	Date               string              `json:"date" dynamodbav:"date"`
	TotalActiveUsers   int                 `json:"total_active_users" dynamodbav:"total_active_users"`
	TotalEngagedUsers  int                 `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	IDECodeCompletions *IDECodeCompletions `json:"copilot_ide_code_completions,omitempty" dynamodbav:"copilot_ide_code_completions,omitempty"`
	IDEChat            *IDEChat            `json:"copilot_ide_chat,omitempty" dynamodbav:"copilot_ide_chat,omitempty"`
	DotcomChat         *DotcomChat         `json:"copilot_dotcom_chat,omitempty" dynamodbav:"copilot_dotcom_chat,omitempty"`

	Enterprise   string `json:"enterprise,omitempty" dynamodbav:"enterprise,omitempty"`
	Organization string `json:"organization,omitempty" dynamodbav:"organization,omitempty"`
	Team         string `json:"team,omitempty" dynamodbav:"team,omitempty"`
}

type IDECodeCompletions struct {
	TotalEngagedUsers int                `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	Editors           []CompletionEditor `json:"editors,omitempty" dynamodbav:"editors,omitempty"`
}

type CompletionEditor struct {
	Name              string            `json:"name" dynamodbav:"name"`
	TotalEngagedUsers int               `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	Models            []CompletionModel `json:"models,omitempty" dynamodbav:"models,omitempty"`
}

type CompletionModel struct {
	Name      string               `json:"name" dynamodbav:"name"`
	Languages []CompletionLanguage `json:"languages,omitempty" dynamodbav:"languages,omitempty"`
}

type CompletionLanguage struct {
	Name                    string `json:"name" dynamodbav:"name"`
	TotalEngagedUsers       int    `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	TotalCodeSuggestions    int    `json:"total_code_suggestions" dynamodbav:"total_code_suggestions"`
	TotalCodeAcceptances    int    `json:"total_code_acceptances" dynamodbav:"total_code_acceptances"`
	TotalCodeLinesSuggested int    `json:"total_code_lines_suggested" dynamodbav:"total_code_lines_suggested"`
	TotalCodeLinesAccepted  int    `json:"total_code_lines_accepted" dynamodbav:"total_code_lines_accepted"`
}

type IDEChat struct {
	TotalEngagedUsers int          `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	Editors           []ChatEditor `json:"editors,omitempty" dynamodbav:"editors,omitempty"`
}

type ChatEditor struct {
	Name   string      `json:"name" dynamodbav:"name"`
	Models []ChatModel `json:"models,omitempty" dynamodbav:"models,omitempty"`
}

type ChatModel struct {
	Name                     string `json:"name" dynamodbav:"name"`
	TotalEngagedUsers        int    `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	TotalChats               int    `json:"total_chats" dynamodbav:"total_chats"`
	TotalChatInsertionEvents int    `json:"total_chat_insertion_events" dynamodbav:"total_chat_insertion_events"`
	TotalChatCopyEvents      int    `json:"total_chat_copy_events" dynamodbav:"total_chat_copy_events"`
}

type DotcomChat struct {
	TotalEngagedUsers int         `json:"total_engaged_users" dynamodbav:"total_engaged_users"`
	Models            []ChatModel `json:"models,omitempty" dynamodbav:"models,omitempty"`
}

// Breakdown is one flattened (editor, model, language) leaf of the code
// completion tree for a single day. Editor names are lowercased so mixed-case
// sources merge in the distribution charts.
type Breakdown struct {
	Editor           string `json:"editor"`
	Model            string `json:"model"`
	Language         string `json:"language"`
	SuggestionsCount int    `json:"suggestions_count"`
	AcceptancesCount int    `json:"acceptances_count"`
	LinesSuggested   int    `json:"lines_suggested"`
	LinesAccepted    int    `json:"lines_accepted"`
	ActiveUsers      int    `json:"active_users"`
}

// Usage is one day's normalized, time-labeled usage summary. Records are
// produced sorted ascending by Day and never mutated afterwards.
type Usage struct {
	Day                      string      `json:"day"`
	TotalActiveUsers         int         `json:"total_active_users"`
	TotalEngagedUsers        int         `json:"total_engaged_users"`
	TotalIDEEngagedUsers     int         `json:"total_ide_engaged_users"`
	TotalCodeSuggestions     int         `json:"total_code_suggestions"`
	TotalCodeAcceptances     int         `json:"total_code_acceptances"`
	TotalCodeLinesSuggested  int         `json:"total_code_lines_suggested"`
	TotalCodeLinesAccepted   int         `json:"total_code_lines_accepted"`
	TotalChatEngagedUsers    int         `json:"total_chat_engaged_users"`
	TotalChats               int         `json:"total_chats"`
	TotalChatInsertionEvents int         `json:"total_chat_insertion_events"`
	TotalChatCopyEvents      int         `json:"total_chat_copy_events"`
	Breakdown                []Breakdown `json:"breakdown"`
	TimeFrameWeek            string      `json:"time_frame_week"`
	TimeFrameMonth           string      `json:"time_frame_month"`
	TimeFrameDisplay         string      `json:"time_frame_display"`
}
