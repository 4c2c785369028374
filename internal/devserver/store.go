package devserver

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/isdelr/marketfront/internal/models"
)

// Store is the dev API's sqlite-backed storage for users and products.
type Store struct {
	db *sql.DB
}

// OpenStore opens the database and applies the schema.
func OpenStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err = migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		image TEXT NOT NULL,
		description TEXT,
		category TEXT,
		location TEXT,
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// CreateUser creates a new user, hashing their password.
func (s *Store) CreateUser(name, email, phone, password string) (models.User, error) {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, fmt.Errorf("email %s is already registered", email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, name, email, phone, password_hash, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Phone, string(hashedPassword), user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, phone, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("authentication failed: user not found")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("authentication failed: invalid password")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// UserByID retrieves a single user by their ID.
func (s *Store) UserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, phone, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user with ID %s not found", id)
		}
		return models.User{}, err
	}
	return user, nil
}

const productColumns = `
	p.id, p.name, p.price, p.image, p.description, p.category, p.location,
	p.user_id, u.name, u.phone, p.created_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	var description, category, location, sellerPhone sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Image, &description, &category, &location,
		&p.SellerID, &p.SellerName, &sellerPhone, &p.CreatedAt,
	)
	if err != nil {
		return models.Product{}, err
	}
	p.Description = description.String
	p.Category = category.String
	p.Location = location.String
	p.SellerPhone = sellerPhone.String
	return p, nil
}

// InsertProduct stores a new listing owned by the given user.
func (s *Store) InsertProduct(np models.NewProduct) (models.Product, error) {
	seller, err := s.UserByID(np.UserID)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		ID:          uuid.New().String(),
		Name:        np.Name,
		Price:       np.Price,
		Image:       np.Image,
		Description: np.Description,
		Category:    np.Category,
		Location:    np.Location,
		SellerID:    seller.ID,
		SellerName:  seller.Name,
		SellerPhone: seller.Phone,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT INTO products(id, name, price, image, description, category, location, user_id, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Price, product.Image,
		product.Description, product.Category, product.Location,
		product.SellerID, product.CreatedAt,
	)
	if err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// AllProducts returns every listing, newest first.
func (s *Store) AllProducts() ([]models.Product, error) {
	return s.queryProducts(
		"SELECT " + productColumns + " FROM products p JOIN users u ON u.id = p.user_id ORDER BY p.created_at DESC, p.id DESC")
}

// ProductsByUser returns one seller's listings, newest first.
func (s *Store) ProductsByUser(userID string) ([]models.Product, error) {
	return s.queryProducts(
		"SELECT "+productColumns+" FROM products p JOIN users u ON u.id = p.user_id WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC",
		userID)
}

func (s *Store) queryProducts(query string, args ...interface{}) ([]models.Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ProductByID retrieves a single listing.
func (s *Store) ProductByID(id string) (models.Product, error) {
	row := s.db.QueryRow(
		"SELECT "+productColumns+" FROM products p JOIN users u ON u.id = p.user_id WHERE p.id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Product{}, fmt.Errorf("product with ID %s not found", id)
		}
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct removes a listing.
func (s *Store) DeleteProduct(id string) error {
	_, err := s.db.Exec("DELETE FROM products WHERE id = ?", id)
	return err
}
