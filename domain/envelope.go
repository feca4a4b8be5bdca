package domain

const (
	AndroidPriorityHigh = "HIGH"
	APNSPriorityHigh    = "10"
)

// Envelope is the FCM HTTP v1 messages:send request body.
type Envelope struct {
	Message EnvelopeMessage `json:"message"`
}

type EnvelopeMessage struct {
	Token   string            `json:"token"`
	Data    map[string]string `json:"data"`
	Android AndroidConfig     `json:"android"`
	APNS    APNSConfig        `json:"apns"`
}

type AndroidConfig struct {
	Priority string `json:"priority"`
}

type APNSConfig struct {
	Headers map[string]string `json:"headers"`
	Payload APNSPayload       `json:"payload"`
}

type APNSPayload struct {
	Aps Aps `json:"aps"`
}

type Aps struct {
	Alert ApsAlert `json:"alert"`
}

type ApsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func NewEnvelope(n Notification) Envelope {
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	return Envelope{
		Message: EnvelopeMessage{
			Token: n.DeviceToken,
			Data:  data,
			Android: AndroidConfig{
				Priority: AndroidPriorityHigh,
			},
			APNS: APNSConfig{
				Headers: map[string]string{"apns-priority": APNSPriorityHigh},
				Payload: APNSPayload{
					Aps: Aps{Alert: ApsAlert{Title: n.Title(), Body: n.Body()}},
				},
			},
		},
	}
}
