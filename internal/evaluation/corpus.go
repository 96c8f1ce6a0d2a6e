package evaluation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TestCase one question with its reference answer.
// ReferenceQuery documents how the reference was obtained; it is never scored.
type TestCase struct {
	Question        string `yaml:"question" json:"question"`
	ReferenceAnswer string `yaml:"reference_answer" json:"reference_answer"`
	ReferenceQuery  string `yaml:"reference_query,omitempty" json:"reference_query,omitempty"`
}

// DefaultCases returns the compiled-in corpus for the freelancer earnings dataset
func DefaultCases() []TestCase {
	return []TestCase{
		{
			Question: "Насколько выше доход у фрилансеров, принимающих оплату в криптовалюте, по сравнению с другими способами оплаты?",
			ReferenceAnswer: `Средний доход фрилансеров, принимающих оплату в криптовалюте, составляет примерно 5139.30 долларов США. Для сравнения, средний доход фрилансеров, использующих другие методы оплаты, составляет:

- Банковский перевод: 5019.96 долларов США
- PayPal: 4976.69 долларов США
- Мобильный банкинг: 4923.65 долларов США

Таким образом, фрилансеры, принимающие оплату в криптовалюте, имеют наивысший средний доход по сравнению с другими способами оплаты.`,
			ReferenceQuery: `SELECT Payment_Method, AVG(Earnings_USD) AS Average_Earnings
FROM freelancer_earnings_bd
GROUP BY Payment_Method
ORDER BY Average_Earnings DESC
LIMIT 10;`,
		},
		{
			Question: "Как распределяется доход фрилансеров в зависимости от региона проживания?",
			ReferenceAnswer: `Доход фрилансеров в зависимости от региона проживания распределяется следующим образом (средний доход в USD):

1. Канада: 5350.13
2. Азия: 5172.28
3. Великобритания: 5047.09
4. Австралия: 4966.10
5. Европа: 4890.53
6. США: 4872.95
7. Ближний Восток: 4870.82

Эти данные показывают, что фрилансеры из Канады имеют наивысший средний доход.`,
			ReferenceQuery: "SELECT Client_Region, AVG(Earnings_USD) as Average_Earnings FROM freelancer_earnings_bd GROUP BY Client_Region ORDER BY Average_Earnings DESC LIMIT 10;",
		},
		{
			Question:        "Какой процент фрилансеров, считающих себя экспертами, выполнил менее 100 проектов?",
			ReferenceAnswer: "Процент фрилансеров, считающих себя экспертами и выполнивших менее 100 проектов, составляет примерно 33.85%.",
			ReferenceQuery: `SELECT
    (SELECT COUNT(*) FROM freelancer_earnings_bd WHERE Experience_Level = 'Expert' AND Job_Completed < 100) * 100.0 /
    (SELECT COUNT(*) FROM freelancer_earnings_bd WHERE Experience_Level = 'Expert') AS percentage;`,
		},
		{
			Question:        "Сколько суммарно заработали 10 самых успешных фрилансеров?",
			ReferenceAnswer: "Суммарно 10 самых успешных фрилансеров заработали 9784255 долларов.",
			ReferenceQuery:  "SELECT sum(Earnings_USD) FROM freelancer_earnings_bd ORDER BY Earnings_USD DESC LIMIT 10;",
		},
		{
			Question:        "В какой категории работает больше всего фрилансеров?",
			ReferenceAnswer: "Больше всего фрилансеров работает в категории Graphic Design.",
			ReferenceQuery:  "SELECT Job_Category, COUNT(*) AS freelancer_count FROM freelancer_earnings_bd GROUP BY Job_Category ORDER BY freelancer_count DESC LIMIT 1;",
		},
	}
}

type casesFile struct {
	Cases []TestCase `yaml:"cases"`
}

// LoadCases reads test cases from a YAML file of the form:
//
//	cases:
//	  - question: ...
//	    reference_answer: ...
//	    reference_query: ...
func LoadCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}

	var file casesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse cases %s: %w", path, err)
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("parse cases %s: no cases", path)
	}
	for i, c := range file.Cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("case %d: question is required", i+1)
		}
		if strings.TrimSpace(c.ReferenceAnswer) == "" {
			return nil, fmt.Errorf("case %d: reference_answer is required", i+1)
		}
	}
	return file.Cases, nil
}
