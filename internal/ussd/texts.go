package ussd

// Wire texts shared across flows. Menu numbering is fixed: earlier
// iterations of the service drifted between numbering schemes, and the
// handsets cache nothing, so the texts here are the single source.
const (
	mainMenuText = "Welcome to SeedLink Kenyan Green Chain\n" +
		"1. Register / Update Profile\n" +
		"2. Book Seedlings\n" +
		"3. Join Events\n" +
		"4. Exit"

	invalidInputPrefix = "Invalid input. Please enter a number from the list:"

	lockoutText = "Too many invalid attempts. Please try again later."
	goodbyeText = "Thank you for using SeedLink."
	pinPrompt   = "Enter your 4-digit PIN:"
	welcomeBack = "Welcome back to SeedLink.\n" + pinPrompt
	errorText   = "An error occurred. Please try again later."
)

// UssdSeedlingType is the ledger line the feature-phone channel books
// against; the USSD menu never picks a specific variety.
const UssdSeedlingType = "USSD_MIXED"
