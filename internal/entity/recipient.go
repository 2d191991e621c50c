package entity

// Recipient is one row of the uploaded renewal listing, resolved per
// send-emails invocation. The motor listing carries the structured renewal
// fields; the health listing only has name, e-mail and policy number.
type Recipient struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	PolicyNo         string `json:"policyNo"`
	ExpectedFilename string `json:"expectedFilename"`

	// Motor-only fields, blank for health.
	ExpiryDate   string `json:"expiryDate,omitempty"`
	RenewalStart string `json:"renewalStart,omitempty"`
	RenewalEnd   string `json:"renewalEnd,omitempty"`
	Premium      string `json:"premium,omitempty"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	VehicleNo    string `json:"vehicleNo,omitempty"`
}
