package domain

const (
	DataKeyTitle = "title"
	DataKeyBody  = "body"
)

type Notification struct {
	DeviceToken string
	Data        map[string]string
}

func (n Notification) Title() string {
	return n.Data[DataKeyTitle]
}

func (n Notification) Body() string {
	return n.Data[DataKeyBody]
}

type Result struct {
	Name string
}
