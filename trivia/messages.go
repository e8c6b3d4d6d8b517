package trivia

import "fmt"

// User-facing reply text. Exact wording is part of the observable contract.
const (
	// MsgWelcome is sent once when the bot is added to a chat.
	MsgWelcome = "Thank you for adding Trivia Bot! For a list of commands, please enter **!trivia help**."

	// MsgGreeting replies to an empty command.
	MsgGreeting = "Hello! Please use **!trivia help** to see the list of available commands."

	// MsgHelp lists the available commands.
	MsgHelp = "## Trivia Bot Commands\n" +
		"**!trivia c *category_name***: change the trivia category.\n" +
		"**!trivia nq**: display the next question.\n" +
		"**!trivia q**: display the current question.\n" +
		"**!trivia a**: display the current question's answer.\n" +
		"**!trivia tc**: display the current trivia category.\n" +
		"**!trivia help**: display the list of available commands."

	// MsgNoCategory asks the user to select a category first.
	MsgNoCategory = "No category has been set. Please use **!trivia c *category_name*** to set a category."

	// MsgNoQuestions asks the user to load a question first.
	MsgNoQuestions = "No questions have been asked. Please use **!trivia nq** to load a new question."

	// MsgQuestionFailed reports that no question could be loaded.
	MsgQuestionFailed = "A trivia question failed to be found. Please repeat command or change category."

	// MsgCategoryRejected reports a category change that did not pass the filter.
	MsgCategoryRejected = "The chosen category was too obscure or not appropriate. Please choose another category."
)

// MsgUnknownCommand formats the reply for an unrecognized command token.
func MsgUnknownCommand(cmd string) string {
	return fmt.Sprintf("**\"%s\"** is an unknown command. Please use **!trivia help** to see the list of available commands.", cmd)
}

// MsgCurrentCategory formats the reply for the tc command.
func MsgCurrentCategory(category string) string {
	return fmt.Sprintf("### Category:\n%s", category)
}
