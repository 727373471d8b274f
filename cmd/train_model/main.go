package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"flightdelay/db"
	"flightdelay/ml"
	"flightdelay/pipeline"
)

func main() {
	dataPath := flag.String("data", "", "flights dataset CSV path")
	latin1 := flag.Bool("latin1", true, "dataset is ISO-8859-1 encoded")
	modelPath := flag.String("model_path", "./data/model.json", "model output path")
	vocabPath := flag.String("vocab_path", "./data/vocabulary.json", "vocabulary output path")
	topN := flag.Int("top_features", 10, "number of one-hot columns to keep")
	epochs := flag.Int("epochs", 500, "training epochs")
	learningRate := flag.Float64("lr", 0.1, "learning rate")
	testRatio := flag.Float64("test_ratio", 0.2, "test ratio")
	dbPath := flag.String("db", "", "optional sqlite path to store flights and the training run")
	flag.Parse()

	if *dataPath == "" && *dbPath == "" {
		log.Fatal("either data or db is required")
	}

	var records []ml.FlightRecord
	var err error
	if *dataPath != "" {
		ingester := pipeline.NewIngester(pipeline.IngestionConfig{Path: *dataPath, Latin1: *latin1})
		records, err = ingester.Load()
	} else {
		// retrain from previously ingested flights
		if err = db.InitDB(*dbPath); err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		records, err = db.QueryFlights(1 << 20)
	}
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	cleaner := pipeline.NewDataCleaner()
	records, issues := cleaner.Clean(records)
	stats := cleaner.Stats()
	log.Printf("cleaned dataset: %d passed, %d rejected (%d issues)", stats.Passed, stats.Rejected, len(issues))

	vocab, err := ml.FreezeVocabulary(records, *topN)
	if err != nil {
		log.Fatalf("failed to freeze vocabulary: %v", err)
	}

	set, err := ml.NewDataPreprocessor(vocab).Build(records)
	if err != nil {
		log.Fatalf("failed to build training data: %v", err)
	}

	trainX, trainY, testX, testY := splitDataset(set.Features, set.Labels, *testRatio)

	model := ml.NewLogisticRegression(*epochs, *learningRate)
	if err := model.Train(trainX, trainY); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy, precision, recall := evaluateModel(model, testX, testY)
	log.Printf("accuracy=%.2f precision=%.2f recall=%.2f", accuracy, precision, recall)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	if err := vocab.Save(*vocabPath); err != nil {
		log.Fatalf("failed to save vocabulary: %v", err)
	}

	if *dbPath != "" {
		if *dataPath != "" {
			if err := db.InitDB(*dbPath); err != nil {
				log.Fatalf("failed to open database: %v", err)
			}
		}
		defer db.Close()
		if err := db.SaveFlights(records); err != nil {
			log.Printf("warning: failed to store flights: %v", err)
		}
		run := db.TrainingRun{
			ModelName:  "logistic",
			Accuracy:   accuracy,
			Precision:  precision,
			Recall:     recall,
			TrainedAt:  time.Now().UTC(),
			DataPoints: len(trainY),
		}
		if err := db.SaveTrainingRun(run); err != nil {
			log.Printf("warning: failed to store training run: %v", err)
		}
	}

	fmt.Printf("model saved to %s, vocabulary to %s\n", *modelPath, *vocabPath)
}

func splitDataset(features [][]float64, labels []int, testRatio float64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	split := int(float64(len(features)) * (1 - testRatio))
	for i := range features {
		if i < split {
			trainX = append(trainX, features[i])
			trainY = append(trainY, labels[i])
		} else {
			testX = append(testX, features[i])
			testY = append(testY, labels[i])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluateModel(model ml.MLModel, testX [][]float64, testY []int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	var correct int
	var truePositive int
	var predictedPositive int
	var actualPositive int

	for i, feature := range testX {
		label, _, err := model.Predict(feature)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(testX))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}
