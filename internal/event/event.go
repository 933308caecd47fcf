package event

// Type 推送事件类型 闭集
type Type string

const (
	TypePhotoUploaded    Type = "photo_uploaded"
	TypePhotoDeleted     Type = "photo_deleted"
	TypeNotification     Type = "notification"
	TypeFollowingUpdated Type = "following_updated"
	TypeFollowersUpdated Type = "followers_updated"
	TypeProfileUpdated   Type = "profile_updated"
)

// Event 通过推送通道下发的一帧 除type外不携带数据
// 接收方收到后重新拉取受影响的数据 避免推送内容与数据库状态不一致
// (代价是多一次请求 这是有意的取舍 不要通过内嵌完整对象来"修复")
type Event struct {
	Type Type `json:"type"`
}

func New(t Type) Event {
	return Event{Type: t}
}
