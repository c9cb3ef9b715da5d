package web

const (
	msgEmailExists         = "User with this Email already exists."
	msgInvalidCredentials  = "Invalid credentials"
	msgConfirmationPending = "Please check your email to confirm your account or resend confirmation email."
	msgEmailNotConfirmed   = "Email not confirmed. Request a new activation link."
	msgUserInactive        = "This user is inactive."
	msgLockedOut           = "Too many failed login attempts. Try again later."
	msgEmailConfirmed      = "your email has been confirmed."
	msgAlreadyActivated    = "Already activated login"
	msgEmailUnknown        = "This email does not exist, would you like to register?"
	msgActivationSent      = "Activation link sent to email"
	msgRegistered          = "Thank you for registering. Please check your email to confirm your account."
	msgProfileUpdated      = "Profile updated."
	msgNotMerchant         = "Only merchants can access the dashboard. Update your profile to become a merchant."

	homeTitle   = "Home Page"
	homeContent = "Welcome to our Python Ecommerce site"
)
