package scoring

import "github.com/tinytelemetry/mockview/internal/model"

var roleResources = map[string][]model.Resource{
	"python_developer": {
		{Name: "Python.org Official Tutorial", URL: "https://docs.python.org/3/tutorial/"},
		{Name: "Real Python", URL: "https://realpython.com/"},
		{Name: "Python Tricks by Dan Bader", URL: "https://realpython.com/products/python-tricks-book/"},
		{Name: "GeeksforGeeks Python", URL: "https://www.geeksforgeeks.org/python-programming-language/"},
	},
	"data_engineer": {
		{Name: "Apache Airflow Documentation", URL: "https://airflow.apache.org/docs/"},
		{Name: "Kafka Documentation", URL: "https://kafka.apache.org/documentation/"},
		{Name: "AWS Data Engineering", URL: "https://aws.amazon.com/big-data/"},
		{Name: "DataCamp Data Engineering Track", URL: "https://www.datacamp.com/tracks/data-engineer-with-python"},
	},
	"web_developer": {
		{Name: "MDN Web Docs", URL: "https://developer.mozilla.org/"},
		{Name: "W3Schools", URL: "https://www.w3schools.com/"},
		{Name: "freeCodeCamp", URL: "https://www.freecodecamp.org/"},
		{Name: "JavaScript.info", URL: "https://javascript.info/"},
	},
	"data_scientist": {
		{Name: "Kaggle Learn", URL: "https://www.kaggle.com/learn"},
		{Name: "Coursera Data Science", URL: "https://www.coursera.org/browse/data-science"},
		{Name: "Towards Data Science", URL: "https://towardsdatascience.com/"},
		{Name: "Scikit-learn Documentation", URL: "https://scikit-learn.org/stable/"},
	},
	"devops_engineer": {
		{Name: "Docker Documentation", URL: "https://docs.docker.com/"},
		{Name: "Kubernetes Documentation", URL: "https://kubernetes.io/docs/"},
		{Name: "AWS DevOps", URL: "https://aws.amazon.com/devops/"},
		{Name: "Terraform Documentation", URL: "https://www.terraform.io/docs/"},
	},
	"software_engineer": {
		{Name: "LeetCode", URL: "https://leetcode.com/"},
		{Name: "System Design Primer", URL: "https://github.com/donnemartin/system-design-primer"},
		{Name: "Clean Code by Robert Martin", URL: "https://www.amazon.com/Clean-Code-Handbook-Software-Craftsmanship/dp/0132350882"},
		{Name: "GeeksforGeeks", URL: "https://www.geeksforgeeks.org/"},
	},
}

var genericResources = []model.Resource{
	{Name: "GeeksforGeeks", URL: "https://www.geeksforgeeks.org/"},
	{Name: "Stack Overflow", URL: "https://stackoverflow.com/"},
	{Name: "GitHub", URL: "https://github.com/"},
	{Name: "Medium Tech Articles", URL: "https://medium.com/topic/technology"},
}

// Resources returns suggested study material for a role. Unknown roles get a
// generic list. The returned slice is a copy.
func Resources(role string) []model.Resource {
	src, ok := roleResources[role]
	if !ok {
		src = genericResources
	}
	return append([]model.Resource(nil), src...)
}
