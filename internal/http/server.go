package httpapi

import (
	"context"
	"net/http"
	"time"

	"educalink-backend-go/internal/config"
	"educalink-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	Storage    services.ObjectStorage
	MetricsHub *services.MetricsHub
}

func NewServer(db *sqlx.DB, cfg config.Config, storage services.ObjectStorage, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		AccessTTL: time.Duration(cfg.AccessTTLSeconds) * time.Second,
	}
	return &Server{
		DB:         db,
		Config:     cfg,
		Tokens:     tokens,
		Storage:    storage,
		MetricsHub: hub,
	}
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	origins := s.Config.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/token", s.Login)
	r.With(s.WithAuth).Get("/users/me/", s.Me)

	r.Route("/user", func(u chi.Router) {
		u.Post("/", s.Register)
		u.Get("/", s.ListUsers)
		u.Get("/search/{name}", s.SearchUsers)
		u.Get("/forums/{userId}", s.UserForums)
		u.Get("/posts/{userId}", s.UserPosts)
		u.Get("/followers/{userId}", s.Followers)
		u.Get("/following/{userId}", s.Following)
		u.With(s.WithAuth).Post("/join_forum/{forumId}", s.UserJoinForum)
		u.With(s.WithAuth).Post("/follow/{userId}", s.FollowUser)
		u.With(s.WithAuth).Delete("/unfollow/{userId}", s.UnfollowUser)
		u.Get("/{userId}", s.GetUser)
		u.With(s.WithAuth).Put("/{userId}", s.UpdateUser)
		u.With(s.WithAuth).Delete("/{userId}", s.DeleteUser)
	})

	r.Route("/forum", func(f chi.Router) {
		f.With(s.WithAuth).Post("/", s.CreateForum)
		f.Get("/", s.ListForums)
		f.Get("/name/{name}", s.GetForumByName)
		f.Get("/search/{name}", s.SearchForums)
		f.Get("/education_level/{level}", s.ForumsByEducationLevel)
		f.Get("/grade/{grade}", s.ForumsByGrade)
		f.Get("/grade/{grade}/education_level/{level}", s.ForumsByGradeAndLevel)
		f.Get("/user/{userId}", s.ForumsByUser)
		f.Get("/user/{userId}/not_in", s.ForumsUserNotIn)
		f.Get("/user/{userId}/not_in/{level}", s.ForumsUserNotInByLevel)
		f.Get("/user/{userId}/not_in/{grade}/{level}", s.ForumsUserNotInByGradeAndLevel)
		f.Get("/{forumId}", s.GetForum)
		f.With(s.WithAuth).Put("/{forumId}", s.UpdateForum)
		f.With(s.WithAuth).Delete("/{forumId}", s.DeleteForum)
		f.Get("/{forumId}/users", s.ForumUsers)
		f.With(s.WithAuth).Post("/{forumId}/join", s.JoinForum)
		f.With(s.WithAuth).Delete("/{forumId}/leave", s.LeaveForum)
	})

	r.Route("/post", func(p chi.Router) {
		p.With(s.WithAuth).Post("/", s.CreatePost)
		p.Get("/", s.ListPosts)
		p.Get("/tag/{tag}", s.PostsByTag)
		p.Get("/search/{title}", s.SearchPosts)
		p.Get("/date_range", s.PostsByDateRange)
		p.Get("/exclude_user/{userId}", s.PostsExcludingUser)
		p.Get("/user/{userId}", s.PostsByUser)
		p.Get("/{postId}", s.GetPost)
		p.With(s.WithAuth).Put("/{postId}", s.UpdatePost)
		p.With(s.WithAuth).Delete("/{postId}", s.DeletePost)
	})
	r.Get("/posts/forum/{forumId}", s.PostsByForum)

	r.Route("/comment", func(c chi.Router) {
		c.With(s.WithAuth).Post("/", s.CreateComment)
		c.Get("/post/{postId}", s.CommentsByPost)
		c.With(s.WithAuth).Delete("/{commentId}", s.DeleteComment)
	})

	r.Route("/sale-post", func(sp chi.Router) {
		sp.With(s.WithAuth).Post("/", s.CreateSalePost)
		sp.Get("/", s.ListSalePosts)
		sp.Get("/type/{saleType}", s.SalePostsByType)
		sp.With(s.WithAuth).Get("/user/{userId}", s.SalePostsByUser)
		sp.Get("/{salePostId}", s.GetSalePost)
		sp.With(s.WithAuth).Put("/{salePostId}", s.UpdateSalePost)
		sp.With(s.WithAuth).Put("/{salePostId}/status", s.ChangeSalePostStatus)
		sp.With(s.WithAuth).Delete("/{salePostId}", s.DeleteSalePost)
	})

	r.Route("/chat", func(c chi.Router) {
		c.Use(s.WithAuth)
		c.Post("/{receiverId}", s.CreateChat)
		c.Get("/", s.MyChats)
		c.Get("/user/{userId}", s.ChatsByUser)
		c.Get("/{chatId}", s.GetChat)
		c.Delete("/{chatId}", s.DeleteChat)
	})

	r.Route("/message", func(m chi.Router) {
		m.Use(s.WithAuth)
		m.Post("/{chatId}", s.CreateMessage)
		m.Get("/chat/{chatId}", s.MessagesByChat)
		m.Get("/{messageId}", s.GetMessage)
		m.Put("/{messageId}", s.UpdateMessage)
		m.Delete("/{messageId}", s.DeleteMessage)
	})

	r.Route("/sale-chat", func(c chi.Router) {
		c.Use(s.WithAuth)
		c.Post("/{sellerId}", s.CreateSaleChat)
		c.Get("/user/{userId}", s.SaleChatsByUser)
		c.Get("/{saleChatId}", s.GetSaleChat)
		c.Delete("/{saleChatId}", s.DeleteSaleChat)
	})

	r.Route("/sale_message", func(m chi.Router) {
		m.Use(s.WithAuth)
		m.Post("/{saleChatId}", s.CreateSaleMessage)
		m.Get("/chat/{saleChatId}", s.SaleMessagesByChat)
		m.Get("/{saleMessageId}", s.GetSaleMessage)
		m.Delete("/{saleMessageId}", s.DeleteSaleMessage)
	})

	r.Route("/ads", func(a chi.Router) {
		a.Get("/", s.ListAds)
		a.With(s.WithAuth, s.RequireAdmin).Post("/", s.CreateAd)
		a.With(s.WithAuth, s.RequireAdmin).Delete("/{adId}", s.DeleteAd)
	})

	r.Route("/company", func(c chi.Router) {
		c.Get("/", s.ListCompanies)
		c.With(s.WithAuth, s.RequireAdmin).Post("/", s.CreateCompany)
	})

	r.Post("/upload/", s.UploadFiles)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(s.WithAuth)
		admin.Use(s.RequireAdmin)
		admin.Get("/metrics/history", s.MetricsHistory)
	})
	r.Get("/ws/metrics", s.MetricsSocket)

	return r
}
