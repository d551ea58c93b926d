package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateEmployeeMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ShiftAssignedMailData struct {
	FullName  string `json:"fullName"`
	ShiftType string `json:"shiftType"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type SubstituteRequestMailData struct {
	ShiftType    string `json:"shiftType"`
	Start        string `json:"start"`
	End          string `json:"end"`
	HighPriority bool   `json:"highPriority"`
}
