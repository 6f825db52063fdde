package config

type WorkerKeyStruct struct {
	GradedResultsQueue string
	// ResultGradedRoutingKey is the RabbitMQ queue for outbound result events.
	ResultGradedRoutingKey string
}

var WorkerKey = &WorkerKeyStruct{
	GradedResultsQueue:     "graded_results_queue",
	ResultGradedRoutingKey: "result.graded",
}
