package billing

// Template is the subject and body used when a category's document is emailed.
type Template struct {
	Subject string
	Body    string
}

var templates = map[Category]Template{
	CategoryInvoice: {
		Subject: "Invoice & Report — Period Review",
		Body: "Hello,\n\n" +
			"Please find attached the invoice.\n\n" +
			"Thanks,\nTSS Technology\n",
	},
	CategoryZelle: {
		Subject: "Request for Zelle Transfer",
		Body: "Hello dear customer!\n" +
			"We hope this message finds you well.\n\n" +
			"We would like to kindly remind you about the pending payment for the invoice related to our recent transaction.\n" +
			"To ensure a seamless and efficient payment process, we highly recommend utilizing Zelle as your preferred payment method.\n" +
			"We kindly request you to proceed with the Zelle transfer using the following payment details:\n\n" +
			"Recipient Name: TSS Technology LLC\n" +
			"Recipient account: info@tsst.ai\n\n" +
			"Thanks, Billing Department\nTSS Technology\n",
	},
	CategoryDebtor: {
		Subject: "URGENT! Fuel Card Deactivation Message",
		Body: "Hello,\n\n" +
			"We regret to inform you that your fuel cards have been deactivated due to an unpaid invoice. Immediate action is required to resolve this matter and reactivate your cards.\n\n" +
			"To reinstate the functionality of your fuel cards, please contact us at your earliest convenience. Our team is available to assist you in settling the outstanding amount and reinstating your cards promptly.\n\n" +
			"Thanks, Billing Department\nTSS Technology\n",
	},
}

// TemplateFor returns the email template for a category.
// Every valid category has a template; ok is false only for unknown categories.
func TemplateFor(c Category) (Template, bool) {
	t, ok := templates[c]
	return t, ok
}
