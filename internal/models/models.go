package models

import "time"

type User struct {
	ID                 int64     `db:"id_user"`
	Name               string    `db:"name"`
	Lastname           string    `db:"lastname"`
	Mail               string    `db:"mail"`
	Password           string    `db:"password"`
	UserType           string    `db:"user_type"`
	EducationLevel     string    `db:"education_level"`
	Grade              *int      `db:"grade"`
	State              string    `db:"state"`
	ProfileImageURL    *string   `db:"profile_image_url"`
	BackgroundImageURL *string   `db:"background_image_url"`
	Deleted            bool      `db:"deleted"`
	CreationDate       time.Time `db:"creation_date"`
}

type Forum struct {
	ID                 int64     `db:"id_forum"`
	Name               string    `db:"name"`
	Description        string    `db:"description"`
	Privacy            string    `db:"privacy"`
	Password           *string   `db:"password"`
	EducationLevel     string    `db:"education_level"`
	Grade              int       `db:"grade"`
	ImageURL           *string   `db:"image_url"`
	BackgroundImageURL *string   `db:"background_image_url"`
	UserID             int64     `db:"id_user"`
	CreationDate       time.Time `db:"creation_date"`
}

type ForumMember struct {
	ID       int64     `db:"id_member"`
	UserID   int64     `db:"id_user"`
	ForumID  int64     `db:"id_forum"`
	JoinDate time.Time `db:"join_date"`
}

type ForumPost struct {
	ID              int64     `db:"id_post"`
	Title           string    `db:"title"`
	Content         string    `db:"content"`
	Tag             *string   `db:"tag"`
	PublicationDate time.Time `db:"publication_date"`
	ForumID         int64     `db:"forum_id"`
	UserID          int64     `db:"user_id"`
}

type PostFile struct {
	ID     int64  `db:"id_file"`
	PostID int64  `db:"post_id"`
	URL    string `db:"url"`
}

type Comment struct {
	ID          int64     `db:"id_comment"`
	CommentText string    `db:"comment_text"`
	CommentDate time.Time `db:"comment_date"`
	PostID      int64     `db:"post_id"`
	UserID      int64     `db:"user_id"`
}

type Follower struct {
	ID         int64 `db:"id_follower"`
	UserID     int64 `db:"id_user"`
	FollowerID int64 `db:"follower_id"`
}

type SalePost struct {
	ID              int64     `db:"id_sale_post"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Price           float64   `db:"price"`
	SaleType        string    `db:"sale_type"`
	ImageURL        string    `db:"image_url"`
	Status          string    `db:"status"`
	SellerID        int64     `db:"seller_id"`
	PublicationDate time.Time `db:"publication_date"`
}

type Chat struct {
	ID         int64 `db:"id_chat"`
	SenderID   int64 `db:"sender_id"`
	ReceiverID int64 `db:"receiver_id"`
}

type Message struct {
	ID          int64     `db:"id_message"`
	Message     string    `db:"message"`
	ChatID      int64     `db:"chat_id"`
	SenderID    int64     `db:"sender_id"`
	DateMessage time.Time `db:"date_message"`
}

type SaleChat struct {
	ID       int64 `db:"id_sale_chat"`
	SellerID int64 `db:"seller_id"`
	BuyerID  int64 `db:"buyer_id"`
}

type SaleMessage struct {
	ID          int64     `db:"id_sale_message"`
	Message     string    `db:"message"`
	SaleChatID  int64     `db:"sale_chat_id"`
	SenderID    int64     `db:"sender_id"`
	DateMessage time.Time `db:"date_message"`
}

type Ad struct {
	ID          int64     `db:"id_ad"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	Link        string    `db:"link"`
	CompanyID   *int64    `db:"company_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type Company struct {
	ID       int64  `db:"id_company"`
	Name     string `db:"name"`
	ImageURL string `db:"image_url"`
	Link     string `db:"link"`
}

type ServerMetricSample struct {
	ID                string    `db:"id"`
	CapturedAt        time.Time `db:"captured_at"`
	HeapUsedBytes     int64     `db:"heap_used_bytes"`
	HeapMaxBytes      int64     `db:"heap_max_bytes"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load"`
	SystemCpuLoad     float64   `db:"system_cpu_load"`
}
