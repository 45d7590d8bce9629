package config

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

var (
	FirebaseApp       *firebase.App
	FirestoreClient   *firestore.Client
	AuthClient        *auth.Client
	StorageBucket     *gcs.BucketHandle
	storageBucketName string
)

// InitFirebase initializes Firebase Admin SDK
func InitFirebase() error {
	ctx := context.Background()

	credentialsPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credentialsPath == "" {
		credentialsPath = "./serviceAccountKey.json"
	}

	// Check if credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		log.Printf("⚠️  Firebase credentials not found at %s", credentialsPath)
		log.Println("📝 Please download your Firebase service account key and place it at the specified path")
		return err
	}

	storageBucketName = os.Getenv("FIREBASE_STORAGE_BUCKET")

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: storageBucketName}, opt)
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return err
	}

	FirebaseApp = app
	log.Println("✅ Firebase app initialized")

	// Initialize Firestore client
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("Error initializing Firestore: %v", err)
		return err
	}
	FirestoreClient = firestoreClient
	log.Println("✅ Firestore client initialized")

	// Initialize Auth client
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Printf("Error initializing Auth: %v", err)
		return err
	}
	AuthClient = authClient
	log.Println("✅ Firebase Auth client initialized")

	// Initialize the default Storage bucket for recovery photos
	storageClient, err := app.Storage(ctx)
	if err != nil {
		log.Printf("Error initializing Storage: %v", err)
		return err
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		log.Printf("Error resolving default storage bucket: %v", err)
		return err
	}
	StorageBucket = bucket
	log.Println("✅ Storage bucket initialized")

	return nil
}

// StorageBucketName returns the configured storage bucket name
func StorageBucketName() string {
	return storageBucketName
}

// GeminiAPIKey returns the API key for the tip generation model
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// CloseFirebase closes Firebase connections
func CloseFirebase() {
	if FirestoreClient != nil {
		FirestoreClient.Close()
		log.Println("🔌 Firestore connection closed")
	}
}
