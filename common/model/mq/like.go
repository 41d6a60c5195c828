package mq

type LikeKafkaJson struct {
	TimeStamp int64  `json:"time_stamp"`
	Business  int32  `json:"business"`
	UserId    string `json:"user_id"`
	LikeId    int64  `json:"like_id"`
	Cancel    bool   `json:"cancel"`
	// Count 翻转后的计数，消费端据此校准like_count
	Count int64 `json:"count"`
}
