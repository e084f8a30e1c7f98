package types

const (
	USERS_COLLECTION     = "users"
	QUESTIONS_COLLECTION = "questions"
)

type User struct {
	ID             string `json:"id" bson:"_id,omitempty"`
	Username       string `json:"username" bson:"username"`
	HashedPassword string `json:"-" bson:"hashed_password"`
	CreateAt       int64  `json:"created_at" bson:"created_at"`
}

// QuestionRecord is one answered question. Records are append-only.
type QuestionRecord struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	UserID       string `json:"user_id" bson:"-"`
	QuestionText string `json:"question_text" bson:"question_text"`
	ResponseText string `json:"response_text" bson:"response_text"`
	CreateAt     int64  `json:"created_at" bson:"created_at"`
}
